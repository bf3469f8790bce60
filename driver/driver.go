package driver

import (
	"bytes"
	"io"
	"os"

	"cfgc/codeobj"
	"cfgc/common"
	"cfgc/irinfo"
	"cfgc/llc"
	"cfgc/mcgen"
	"cfgc/report"
	"cfgc/target"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// SetTarget installs the named target.  It returns true if an error occurred,
// in which case the error has been reported and the previous target is still
// installed.
func SetTarget(name string) bool {
	if err := target.Set(name); err != nil {
		report.ReportError("Target Error", err)
		return true
	}

	report.ReportInfo("Target", "%s (%s)", name, target.CurrentTriple())
	return false
}

// CurrentTriple returns the triple of the installed target.
func CurrentTriple() string {
	return target.CurrentTriple()
}

// Options control a single code generation run.
type Options struct {
	Output Output

	// EmitLLVM writes the optimized IR next to whatever Output produces.
	EmitLLVM bool

	// DumpBits prints the code object produced for Memory output.
	DumpBits bool

	// Stdout receives PrintAsm output.  Nil means os.Stdout.
	Stdout io.Writer

	// Recorder, if set, observes the optimization passes.
	Recorder mcgen.Recorder
}

// Codegen compiles src for the installed target and routes the result to
// out.  The code object is only returned for Memory output.
func Codegen(src Source, emitLLVM, dumpBits bool, out Output) (*codeobj.Object, error) {
	return Run(src, Options{Output: out, EmitLLVM: emitLLVM, DumpBits: dumpBits})
}

// Run is Codegen with the full set of options.  Recoverable errors (bad
// input, I/O failures) are reported before they are returned.  A
// *mcgen.FatalError is returned unreported: the caller decides how to abort.
func Run(src Source, opts Options) (*codeobj.Object, error) {
	tgt, release, err := target.Acquire()
	if err != nil {
		report.ReportError("Target Error", err)
		return nil, err
	}
	defer release()

	// The context outlives everything created below it, so it is torn down
	// last.
	ctx := llc.NewContext()
	defer ctx.Dispose()

	report.ReportBeginPhase("Parsing")
	mod, err := src.parse(ctx)
	if err == nil {
		err = mod.Verify()
	}
	if err != nil {
		report.ReportError("Parse Error", err)
		return nil, err
	}

	gen, err := mcgen.New(ctx, tgt)
	if err != nil {
		report.ReportEndPhase(false)
		return nil, err
	}
	defer gen.Dispose()

	if opts.Stdout != nil {
		gen.SetStdout(opts.Stdout)
	}
	gen.SetRecorder(opts.Recorder)

	gen.BeginModule(mod)
	defer gen.EndModule()

	report.ReportBeginPhase("Optimizing")
	if err := gen.Optimize(mod); err != nil {
		report.ReportEndPhase(false)
		return nil, err
	}

	// Emission rewrites the module on its way to machine code so the IR is
	// saved and summarized first.
	var sum *irinfo.Summary
	if opts.DumpBits && opts.Output == Memory {
		sum = irinfo.SummarizeModule(mod)
	}

	if opts.EmitLLVM || opts.Output == LLVMAsmFile {
		path := src.irOutputFile()
		if err := mod.WriteToFile(path); err != nil {
			report.ReportError("Output Error", err)
			return nil, err
		}

		reportFile(path)
	}

	report.ReportBeginPhase("Emitting")

	var obj *codeobj.Object
	switch opts.Output {
	case PrintAsm:
		_, err = gen.DumpCode(mod, common.StdoutPath, true)
	case AsmFile, ObjFile:
		var path string
		path, err = gen.DumpCode(mod, src.Stem(), opts.Output == AsmFile)
		if err == nil {
			defer reportFile(path)
		}
	case Memory:
		obj, err = gen.Compile(mod)
	case LLVMAsmFile:
		// Already written.
	default:
		err = errors.Errorf("unknown output %d", int(opts.Output))
	}

	if err != nil {
		var fatal *mcgen.FatalError
		if errors.As(err, &fatal) {
			report.ReportEndPhase(false)
		} else {
			report.ReportError("Output Error", err)
		}

		return nil, err
	}

	report.ReportEndPhase(true)

	if obj != nil {
		report.ReportInfo("Codegen", "%s: %s", obj.Name, humanize.Bytes(uint64(obj.Size())))

		if opts.DumpBits {
			dumpBits(sum, obj)
		}
	} else if opts.DumpBits {
		report.ReportWarning("Codegen", "--dump-bits only applies to memory output, not %s", opts.Output)
	}

	return obj, nil
}

// reportFile announces an output file and its size.
func reportFile(path string) {
	if fi, err := os.Stat(path); err == nil {
		report.ReportInfo("Codegen", "wrote %s (%s)", path, humanize.Bytes(uint64(fi.Size())))
	}
}

// dumpBits prints what went into a code object: a summary of the optimized
// IR it came from, its sections and relocations, and the machine code itself.
func dumpBits(sum *irinfo.Summary, obj *codeobj.Object) {
	body := &bytes.Buffer{}

	body.WriteString(sum.String())
	body.WriteString("\n")

	body.WriteString(obj.Summary())
	body.WriteString("\n")

	if err := obj.Dump(body); err != nil {
		report.ReportWarning("Codegen", "dumping %s: %s", obj.Name, err)
	}

	report.ReportBlock(obj.Name, body.String())
}
