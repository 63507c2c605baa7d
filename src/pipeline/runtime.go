package pipeline

import (
	"fmt"

	"github.com/will-rowe/smash/src/signature"
)

// Info stores the runtime information
type Info struct {
	Version   string
	NumProc   int
	Profiling bool
	Progress  bool // show a progress bar while sketching
	Params    *signature.ParameterSet
	Sketch    SketchCmd
}

// SketchCmd stores the runtime info for the sketch command
type SketchCmd struct {
	Force     bool   // skip k-mers holding invalid symbols instead of rejecting the input source
	Singleton bool   // one signature per record rather than per input source
	MergeName string // merge every signature into one with this name
}

// Check is a method to make sure the runtime info can drive a pipeline
func (info *Info) Check() error {
	if info.Params == nil {
		return fmt.Errorf("no parameter set attached to the runtime info")
	}
	if info.NumProc < 1 {
		return fmt.Errorf("number of processors must be at least 1, got %d", info.NumProc)
	}
	if info.Sketch.Singleton && info.Sketch.MergeName != "" {
		return fmt.Errorf("singleton signatures can't also be merged")
	}
	return nil
}
