package pipeline

import (
	"fmt"
	"sync"

	"github.com/will-rowe/smash/src/seqio"
	"github.com/will-rowe/smash/src/signature"
)

// sketchMinion pulls input sources from the boss and sketches them into signatures it owns.
// Signatures are never shared between minions, so no sketch is mutated concurrently.
type sketchMinion struct {
	id          int
	boss        *theBoss // pointer to the boss so the minion can access the runtime info (e.g. the parameter set)
	sourceCount int
	recordCount int
	failedCount int
}

// newSketchMinion is the constructor function
func newSketchMinion(id int, boss *theBoss) *sketchMinion {
	return &sketchMinion{
		id:   id,
		boss: boss,
	}
}

// start is a method to start the sketchMinion running
func (minion *sketchMinion) start(wg *sync.WaitGroup) {
	go func() {
		defer wg.Done()
		for {

			// pull input sources from queue until done
			source, ok := <-minion.boss.sources
			if !ok {

				// update the counts
				minion.boss.Lock()
				minion.boss.sourceCount += minion.sourceCount
				minion.boss.recordCount += minion.recordCount
				minion.boss.failedCount += minion.failedCount
				minion.boss.Unlock()
				return
			}

			// a failed source is reported with the result and doesn't stop the minion
			result := minion.sketchSource(source)
			minion.sourceCount++
			minion.recordCount += result.records
			if result.err != nil {
				minion.failedCount++
			}
			minion.boss.results <- result
		}
	}()
}

// sketchSource builds the signature(s) for a single input source
func (minion *sketchMinion) sketchSource(source *inputSource) *sketchResult {
	info := minion.boss.info
	result := &sketchResult{source: source}
	reader, err := seqio.Open(source.path, info.Params.InputIsProtein())
	if err != nil {
		result.err = err
		return result
	}
	defer reader.Close()

	var sig *signature.Signature
	if !info.Sketch.Singleton {
		if sig, err = signature.New("", source.path, info.Params); err != nil {
			result.err = err
			return result
		}
	}
	for reader.Next() {
		record := reader.Record()
		if info.Sketch.Singleton {
			if sig, err = signature.New(record.ID, source.path, info.Params); err != nil {
				result.err = err
				return result
			}
		}

		// an invalid record rejects the whole source unless k-mers are being forced
		if err := sig.AddSequence(record.Seq, info.Sketch.Force); err != nil {
			result.err = fmt.Errorf("record %q: %w", record.ID, err)
			result.signatures = nil
			return result
		}
		result.records++
		if info.Sketch.Singleton {
			result.signatures = append(result.signatures, sig)
		}
	}
	if err := reader.Err(); err != nil {
		result.err = err
		result.signatures = nil
		return result
	}
	if !info.Sketch.Singleton {
		result.signatures = []*signature.Signature{sig}
	}
	return result
}
