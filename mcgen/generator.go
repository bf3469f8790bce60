package mcgen

import (
	"io"
	"os"

	"cfgc/codeobj"
	"cfgc/common"
	"cfgc/llc"
	"cfgc/target"

	"github.com/pkg/errors"
)

// Function attributes imprinted by BeginModule.  LLVM resolves per-function
// floating point modes from these rather than from the target machine.
var denormalAttrs = [...][2]string{
	{"denormal-fp-math", "ieee,ieee"},
	{"denormal-fp-math-f32", "ieee,ieee"},
}

// Generator is the machine code generator: it owns a target machine and the
// optimization pipeline for one target and drives modules through them.  A
// generator is not safe for concurrent use.
type Generator struct {
	tgt *target.Descriptor
	ctx *llc.Context

	machine *llc.TargetMachine
	pb      *llc.PassBuilder

	pipeline     Pipeline
	pipelineText string

	recorder Recorder
	stdout   io.Writer

	// The module between BeginModule and EndModule.
	module *llc.Module

	disposed bool
}

// New creates a generator for tgt inside ctx.  Target machine options are the
// fixed ones every compile uses: generic CPU, no extra features, PIC, the
// default code model and the "less" optimization level.  Guaranteed tail call
// optimization stays off since it adds a bogus stack adjustment after non-tail
// calls in our calling convention; natural tail calls are still optimized.
func New(ctx *llc.Context, tgt *target.Descriptor) (*Generator, error) {
	if tgt == nil {
		return nil, &FatalError{Op: "creating code generator", Err: target.ErrNoTarget}
	}

	t, err := llc.LookupTarget(tgt.Triple)
	if err != nil {
		return nil, &FatalError{Op: "resolving target " + tgt.Name, Err: err}
	}

	machine, err := ctx.NewMachine(
		t,
		tgt.Triple,
		"generic",
		"",
		llc.CodeGenLevelLess,
		llc.RelocPIC,
		llc.CodeModelDefault,
	)
	if err != nil {
		return nil, &FatalError{Op: "creating target machine", Err: err}
	}

	pipeline := DefaultPipeline()
	return &Generator{
		tgt:          tgt,
		ctx:          ctx,
		machine:      machine,
		pb:           ctx.NewPassBuilder(),
		pipeline:     pipeline,
		pipelineText: pipeline.String(),
		stdout:       os.Stdout,
	}, nil
}

// Dispose releases the target machine and pass builder.  The generator must
// not be used afterwards.
func (g *Generator) Dispose() {
	if g.disposed {
		return
	}

	g.module = nil
	g.pb.Dispose()
	g.machine.Dispose()
	g.disposed = true
}

// Target returns the descriptor the generator was built for.
func (g *Generator) Target() *target.Descriptor {
	return g.tgt
}

// Triple returns the target machine's triple.
func (g *Generator) Triple() string {
	return g.machine.Triple()
}

// DataLayout returns the target machine's data layout.
func (g *Generator) DataLayout() string {
	return g.machine.DataLayout()
}

// Pipeline returns the function pipeline run by Optimize.
func (g *Generator) Pipeline() Pipeline {
	return g.pipeline
}

// SetRecorder installs a recorder notified of every pass Optimize runs.  A
// nil recorder turns recording off.
func (g *Generator) SetRecorder(r Recorder) {
	g.recorder = r
}

// SetStdout redirects output written to the path `-`.
func (g *Generator) SetStdout(w io.Writer) {
	g.stdout = w
}

// -----------------------------------------------------------------------------

// BeginModule tags m with the target machine's triple and data layout and
// makes it the generator's current module.  Calling it again on the same
// module changes nothing.
func (g *Generator) BeginModule(m *llc.Module) {
	m.SetTriple(g.machine.Triple())
	m.SetDataLayout(g.machine.DataLayout())

	for it := m.Functions(); it.Next(); {
		fn := it.Item()
		if fn.IsDeclaration() {
			continue
		}

		for _, attr := range denormalAttrs {
			fn.AddStringAttribute(attr[0], attr[1])
		}
	}

	g.module = m
}

// EndModule releases the per-module state set up by BeginModule.
func (g *Generator) EndModule() {
	g.module = nil
}

// checkBegun fails unless m is the current module.
func (g *Generator) checkBegun(m *llc.Module) error {
	if g.disposed {
		return errors.New("code generator already disposed")
	}

	if g.module != m {
		return errors.Errorf("module %s was not prepared for %s", m.ID(), g.tgt.Name)
	}

	return nil
}

// Optimize runs the function pipeline over every function of m in
// declaration order.  Running it twice is safe.
func (g *Generator) Optimize(m *llc.Module) error {
	if err := g.checkBegun(m); err != nil {
		return err
	}

	run := func() error {
		return g.pb.Run(m, g.pipelineText, g.machine)
	}

	if g.recorder == nil {
		if err := run(); err != nil {
			return &FatalError{Op: "optimizing", Err: err}
		}

		return nil
	}

	g.pb.SetDebugLogging(true)
	log, err := llc.CaptureStderr(run)
	g.pb.SetDebugLogging(false)

	if err != nil {
		return &FatalError{Op: "optimizing", Err: err}
	}

	replayPassLog(log, g.pipeline, g.recorder)
	return nil
}

// Compile emits m as object code into memory and wraps it in a code object
// named `<module id>-objectbuffer`.
func (g *Generator) Compile(m *llc.Module) (*codeobj.Object, error) {
	if err := g.checkBegun(m); err != nil {
		return nil, err
	}

	image, err := g.machine.Emit(m, llc.ObjectFile)
	if err != nil {
		return nil, &FatalError{Op: "emitting object code", Err: err}
	}

	obj, err := g.tgt.NewCodeObject(m.ID()+"-objectbuffer", image)
	if err != nil {
		return nil, errors.Wrapf(err, "wrapping object code for %s", g.tgt.Name)
	}

	return obj, nil
}

// DumpCode writes m as assembly or object code to the file OutputFile picks
// for stem and returns that path.  Assembly for the path `-` goes to the
// generator's stdout.  On failure no file is left behind, except when the
// write itself fails part way.
func (g *Generator) DumpCode(m *llc.Module, stem string, asm bool) (string, error) {
	path := OutputFile(stem, asm)

	if err := g.checkBegun(m); err != nil {
		return path, err
	}

	fileType := llc.ObjectFile
	if asm {
		fileType = llc.AssemblyFile
	}

	var (
		w        io.Writer
		closeOut func() error
	)

	if path == common.StdoutPath {
		w, closeOut = g.stdout, func() error { return nil }
	} else {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return path, errors.Wrapf(err, "opening %s", path)
		}

		w, closeOut = f, f.Close
	}

	code, err := g.machine.Emit(m, fileType)
	if err != nil {
		closeOut()
		if path != common.StdoutPath {
			os.Remove(path)
		}

		return path, errors.Wrapf(err, "generating %s", path)
	}

	if _, err := w.Write(code); err != nil {
		closeOut()
		return path, errors.Wrapf(err, "writing %s", path)
	}

	return path, errors.Wrapf(closeOut(), "closing %s", path)
}
