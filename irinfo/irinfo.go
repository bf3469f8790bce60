// Package irinfo summarizes LLVM IR: functions, calls and switches.  Text is
// read with a pure Go parser, which only understands typed pointers; modules
// already loaded into LLVM are summarized directly.
package irinfo

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"text/tabwriter"

	"cfgc/llc"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/pkg/errors"
)

// Function is the summary of one function.
type Function struct {
	Name        string
	Defined     bool
	CallingConv string

	Blocks        int
	Calls         int
	TailCalls     int
	MustTailCalls int

	Switches       int
	MaxSwitchCases int

	// Callees lists the direct callees in program order.
	Callees []string
}

// Summary describes a module.  Functions appear in declaration order.
type Summary struct {
	SourceFilename string
	TargetTriple   string
	DataLayout     string
	Functions      []Function
}

// ErrOpaquePointers is returned for IR text using the opaque `ptr` type, which
// the text parser does not support.  Such IR can still be summarized once it
// is loaded into LLVM: see SummarizeModule.
var ErrOpaquePointers = errors.New("IR uses opaque pointers")

// opaquePtr matches the `ptr` type keyword but not names such as `%ptr`.
var opaquePtr = regexp.MustCompile(`(^|[\s(\[{<,])ptr([\s)\]}>,]|$)`)

// Summarize parses IR text; name is used in error messages only.
func Summarize(name, text string) (*Summary, error) {
	m, err := asm.ParseString(name, text)
	if err != nil {
		return nil, parseError(name, text, err)
	}

	return summarizeModule(m), nil
}

// SummarizeFile parses the IR file at path.
func SummarizeFile(path string) (*Summary, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "summarizing %s", path)
	}

	return Summarize(path, string(text))
}

func parseError(name, text string, err error) error {
	if opaquePtr.MatchString(text) {
		return errors.Wrapf(ErrOpaquePointers, "summarizing %s", name)
	}

	return errors.Wrapf(err, "summarizing %s", name)
}

// SummarizeModule summarizes a module loaded into LLVM.  Unlike the text
// parser it accepts any IR LLVM does and sees the module as it is now, after
// whatever passes have run over it.  Must-tail calls are counted as tail
// calls and the source file name is left empty.
func SummarizeModule(m *llc.Module) *Summary {
	s := &Summary{
		TargetTriple: m.Triple(),
		DataLayout:   m.DataLayout(),
	}

	for it := m.Functions(); it.Next(); {
		f := it.Item()

		fn := Function{
			Name:        f.Name(),
			Defined:     !f.IsDeclaration(),
			CallingConv: f.CallingConv(),
			Blocks:      f.BlockCount(),
		}

		for _, call := range f.Calls() {
			fn.Calls++
			if call.Tail {
				fn.TailCalls++
			}

			if call.Callee != "" {
				fn.Callees = append(fn.Callees, call.Callee)
			}
		}

		for _, n := range f.SwitchCases() {
			fn.Switches++
			if n > fn.MaxSwitchCases {
				fn.MaxSwitchCases = n
			}
		}

		s.Functions = append(s.Functions, fn)
	}

	return s
}

func summarizeModule(m *ir.Module) *Summary {
	s := &Summary{
		SourceFilename: m.SourceFilename,
		TargetTriple:   m.TargetTriple,
		DataLayout:     m.DataLayout,
	}

	for _, f := range m.Funcs {
		s.Functions = append(s.Functions, summarizeFunc(f))
	}

	return s
}

func summarizeFunc(f *ir.Func) Function {
	fn := Function{
		Name:        f.Name(),
		Defined:     len(f.Blocks) > 0,
		CallingConv: "ccc",
		Blocks:      len(f.Blocks),
	}

	if f.CallingConv != enum.CallingConvNone {
		fn.CallingConv = f.CallingConv.String()
	}

	for _, block := range f.Blocks {
		for _, inst := range block.Insts {
			call, ok := inst.(*ir.InstCall)
			if !ok {
				continue
			}

			fn.Calls++
			switch call.Tail {
			case enum.TailTail:
				fn.TailCalls++
			case enum.TailMustTail:
				fn.MustTailCalls++
			}

			if callee, ok := call.Callee.(*ir.Func); ok {
				fn.Callees = append(fn.Callees, callee.Name())
			}
		}

		if sw, ok := block.Term.(*ir.TermSwitch); ok {
			fn.Switches++
			if len(sw.Cases) > fn.MaxSwitchCases {
				fn.MaxSwitchCases = len(sw.Cases)
			}
		}
	}

	return fn
}

// Function looks up a function summary by name.
func (s *Summary) Function(name string) (Function, bool) {
	for _, fn := range s.Functions {
		if fn.Name == name {
			return fn, true
		}
	}

	return Function{}, false
}

// String renders the summary as an aligned table.
func (s *Summary) String() string {
	sb := &strings.Builder{}

	if s.TargetTriple != "" {
		fmt.Fprintf(sb, "target triple: %s\n", s.TargetTriple)
	}

	tw := tabwriter.NewWriter(sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "function\tkind\tcc\tblocks\tcalls\ttail\tswitches")
	for _, fn := range s.Functions {
		kind := "declare"
		if fn.Defined {
			kind = "define"
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			fn.Name, kind, fn.CallingConv, fn.Blocks, fn.Calls,
			fn.TailCalls+fn.MustTailCalls, fn.Switches,
		)
	}
	tw.Flush()

	return sb.String()
}
