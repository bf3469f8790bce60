package llc

import (
	"github.com/pkg/errors"
	"tinygo.org/x/go-llvm"
)

// CodeGenOptLevel represents an LLVM code generation optimization level.
type CodeGenOptLevel = llvm.CodeGenOptLevel

// Enumeration of LLVM codegen optimization levels.
const (
	CodeGenLevelNone       = llvm.CodeGenLevelNone
	CodeGenLevelLess       = llvm.CodeGenLevelLess
	CodeGenLevelDefault    = llvm.CodeGenLevelDefault
	CodeGenLevelAggressive = llvm.CodeGenLevelAggressive
)

// RelocMode represents an LLVM relocation mode.
type RelocMode = llvm.RelocMode

// Enumeration of the LLVM relocation modes we use.
const (
	RelocDefault = llvm.RelocDefault
	RelocStatic  = llvm.RelocStatic
	RelocPIC     = llvm.RelocPIC
)

// CodeModel represents an LLVM code model.
type CodeModel = llvm.CodeModel

// Enumeration of the LLVM code models we use.
const (
	CodeModelDefault = llvm.CodeModelDefault
	CodeModelSmall   = llvm.CodeModelSmall
)

// CodeGenFileType represents a possible code generation output type.
type CodeGenFileType = llvm.CodeGenFileType

// Enumeration of LLVM codegen file types.
const (
	AssemblyFile = llvm.AssemblyFile
	ObjectFile   = llvm.ObjectFile
)

// -----------------------------------------------------------------------------

// HostTriple returns the target triple of the host system.
func HostTriple() string {
	return llvm.DefaultTargetTriple()
}

// Target represents an LLVM output target.
type Target struct {
	t llvm.Target
}

// LookupTarget finds the target corresponding to triple in the LLVM target
// registry.
func LookupTarget(triple string) (Target, error) {
	t, err := llvm.GetTargetFromTriple(triple)
	if err != nil {
		return Target{}, errors.Wrapf(err, "no LLVM target for `%s`", triple)
	}

	return Target{t: t}, nil
}

// RegisteredTargets returns the names of every target compiled into LLVM.
func RegisteredTargets() []string {
	var names []string
	for t := llvm.FirstTarget(); t.C != nil; t = t.NextTarget() {
		names = append(names, t.Name())
	}

	return names
}

// Name returns the name of the target.
func (t Target) Name() string {
	return t.t.Name()
}

// Description returns the description of the target.
func (t Target) Description() string {
	return t.t.Description()
}

// -----------------------------------------------------------------------------

// TargetMachine represents an LLVM target machine: used to generate output.
type TargetMachine struct {
	tm       llvm.TargetMachine
	layout   string
	disposed bool
}

// NewMachine creates a new target machine for target owned by the context.
func (c *Context) NewMachine(
	target Target,
	triple, cpu, features string,
	level CodeGenOptLevel,
	reloc RelocMode,
	model CodeModel,
) (*TargetMachine, error) {
	tm := target.t.CreateTargetMachine(triple, cpu, features, level, reloc, model)
	if tm.C == nil {
		return nil, errors.Errorf("LLVM refused to create a machine for `%s`", triple)
	}

	td := tm.CreateTargetData()
	layout := td.String()
	td.Dispose()

	mach := &TargetMachine{tm: tm, layout: layout}
	c.takeOwnership(mach)
	return mach, nil
}

// Dispose releases the target machine ahead of its context.
func (tm *TargetMachine) Dispose() {
	tm.dispose()
}

// dispose disposes of target machine.
func (tm *TargetMachine) dispose() {
	if !tm.disposed {
		tm.tm.Dispose()
		tm.disposed = true
	}
}

// Triple returns the target triple of the target machine.
func (tm *TargetMachine) Triple() string {
	return tm.tm.Triple()
}

// DataLayout returns the data layout string of the target machine.
func (tm *TargetMachine) DataLayout() string {
	return tm.layout
}

// Emit runs the machine's code generation pipeline over mod and returns the
// produced assembly or object bytes.
func (tm *TargetMachine) Emit(mod *Module, fileType CodeGenFileType) ([]byte, error) {
	mb, err := tm.tm.EmitToMemoryBuffer(mod.m, fileType)
	if err != nil {
		return nil, errors.Wrapf(err, "emitting %s", mod.id)
	}
	defer mb.Dispose()

	// The buffer's storage goes away with it.
	return append([]byte(nil), mb.Bytes()...), nil
}
