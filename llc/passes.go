package llc

import (
	"github.com/pkg/errors"
	"tinygo.org/x/go-llvm"
)

// PassBuilder runs textual pass pipelines through LLVM's pass builder.
type PassBuilder struct {
	opts     llvm.PassBuilderOptions
	disposed bool
}

// NewPassBuilder creates a pass builder owned by the context.
func (c *Context) NewPassBuilder() *PassBuilder {
	pb := &PassBuilder{opts: llvm.NewPassBuilderOptions()}
	c.takeOwnership(pb)
	return pb
}

// SetDebugLogging makes LLVM log each pass it runs to standard error.
func (pb *PassBuilder) SetDebugLogging(enabled bool) {
	pb.opts.SetDebugLogging(enabled)
}

// SetVerifyEach makes LLVM verify the module after every pass.
func (pb *PassBuilder) SetVerifyEach(enabled bool) {
	pb.opts.SetVerifyEach(enabled)
}

// Run runs pipeline over mod using tm for target-aware analyses.
func (pb *PassBuilder) Run(mod *Module, pipeline string, tm *TargetMachine) error {
	if err := mod.m.RunPasses(pipeline, tm.tm, pb.opts); err != nil {
		return errors.Wrapf(err, "running `%s` on %s", pipeline, mod.id)
	}

	return nil
}

// Dispose releases the pass builder ahead of its context.
func (pb *PassBuilder) Dispose() {
	pb.dispose()
}

func (pb *PassBuilder) dispose() {
	if !pb.disposed {
		pb.opts.Dispose()
		pb.disposed = true
	}
}
