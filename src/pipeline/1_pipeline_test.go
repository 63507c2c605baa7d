package pipeline

import (
	"io/ioutil"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/will-rowe/smash/src/signature"
	"github.com/will-rowe/smash/src/version"
)

///////////////////////////////////////////////////////////////////////////////////////////////

/*
TEST DATA
*/
// two synthetic genomes, written to FASTA and FASTQ by setupTmpDir
var (
	genomeA = randomGenome(1, 10000)
	genomeB = randomGenome(2, 10000)
	tmpDir  string
)

///////////////////////////////////////////////////////////////////////////////////////////////

/*
TEST PARAMETERS
*/
func testParameters(t *testing.T) *Info {
	ps, err := signature.NewParameterSet(signature.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	return &Info{
		NumProc: 2,
		Version: version.GetVersion(),
		Params:  ps,
	}
}

func randomGenome(seed int64, length int) []byte {
	r := rand.New(rand.NewSource(seed))
	seq := make([]byte, length)
	for i := range seq {
		seq[i] = "ACGT"[r.Intn(4)]
	}
	return seq
}

func setupTmpDir(t *testing.T) {
	dir, err := ioutil.TempDir("", "smash-pipeline")
	if err != nil {
		t.Fatal(err)
	}
	tmpDir = dir
}

func writeTestFile(t *testing.T, name, content string) string {
	path := filepath.Join(tmpDir, name)
	if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func cleanTmpDir() {
	os.RemoveAll(tmpDir)
}

///////////////////////////////////////////////////////////////////////////////////////////////

/*
DUMMY PIPELINE
*/

type ComponentA struct {
	input  []int
	output chan int
}

func NewComponentA(i []int) *ComponentA {
	return &ComponentA{input: i, output: make(chan int)}
}

func (ComponentA *ComponentA) Run() {
	defer close(ComponentA.output)
	for _, input := range ComponentA.input {
		ComponentA.output <- input
	}
}

type ComponentB struct {
	input    chan int
	addition int
	results  []int
}

func NewComponentB(i int) *ComponentB {
	return &ComponentB{addition: i}
}

func (ComponentB *ComponentB) Connect(previous *ComponentA) {
	ComponentB.input = previous.output
}

func (ComponentB *ComponentB) Run() {
	results := []int{}
	for input := range ComponentB.input {
		results = append(results, (input + ComponentB.addition))
	}
	ComponentB.results = results

}

///////////////////////////////////////////////////////////////////////////////////////////////

/*
DUMMY PIPELINE TEST
*/

func TestPipeline(t *testing.T) {
	inputValues := []int{1, 2, 3, 4}
	expectedOutput := []int{11, 12, 13, 14}

	// create the processes
	a := NewComponentA(inputValues)
	b := NewComponentB(10)

	// create the pipeline
	newPipeline := NewPipeline()

	// add the processes and connect them
	newPipeline.AddProcesses(a, b)
	b.Connect(a)
	if len(newPipeline.processes) != 2 {
		t.Fatal("did not add correct number of processes to pipeline")
	}

	// run the pipeline
	newPipeline.Run()

	// once the pipeline is done, there should be results in the final component
	if len(expectedOutput) != len(b.results) {
		t.Fatal("pipeline did not produce expected output")
	}
	for i, val := range b.results {
		if val != expectedOutput[i] {
			t.Fatal("pipeline did not produce expected output")
		}
	}
}
