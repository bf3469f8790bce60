package driver

import "github.com/pkg/errors"

// Output selects where generated code goes.
type Output int

// Enumeration of output sinks.
const (
	PrintAsm    Output = iota // Assembly to standard output.
	AsmFile                   // Assembly to `<stem>.s`.
	ObjFile                   // Object code to `<stem>.o`.
	Memory                    // Object code returned as a code object.
	LLVMAsmFile               // Optimized IR to `<stem>.ll`.
)

var outputNames = [...]string{
	PrintAsm:    "print",
	AsmFile:     "asm",
	ObjFile:     "obj",
	Memory:      "mem",
	LLVMAsmFile: "llvm",
}

func (o Output) String() string {
	if o < 0 || int(o) >= len(outputNames) {
		return "unknown"
	}

	return outputNames[o]
}

// ParseOutput converts the command line spelling of an output sink.
func ParseOutput(name string) (Output, error) {
	for o, n := range outputNames {
		if n == name {
			return Output(o), nil
		}
	}

	return 0, errors.Errorf("unknown output `%s`", name)
}
