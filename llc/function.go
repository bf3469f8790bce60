package llc

import (
	"fmt"

	"tinygo.org/x/go-llvm"
)

// Function represents an LLVM function inside a module.
type Function struct {
	v   llvm.Value
	ctx *Context
}

// Name returns the name of the function.
func (f *Function) Name() string {
	return f.v.Name()
}

// IsDeclaration returns whether the function has no body.
func (f *Function) IsDeclaration() bool {
	return f.v.IsDeclaration()
}

// CallingConv returns the IR spelling of the function's calling convention.
func (f *Function) CallingConv() string {
	switch cc := f.v.FunctionCallConv(); cc {
	case llvm.CCallConv:
		return "ccc"
	case llvm.FastCallConv:
		return "fastcc"
	case llvm.ColdCallConv:
		return "coldcc"
	default:
		return fmt.Sprintf("cc %d", cc)
	}
}

// BlockCount returns the number of basic blocks in the function body.
func (f *Function) BlockCount() int {
	return f.v.BasicBlocksCount()
}

// AddStringAttribute attaches a `"key"="value"` attribute to the function.
func (f *Function) AddStringAttribute(key, value string) {
	f.v.AddFunctionAttr(f.ctx.c.CreateStringAttribute(key, value))
}

// StringAttribute returns the value of a string attribute on the function.
func (f *Function) StringAttribute(key string) (string, bool) {
	// Index -1 addresses the function itself rather than a parameter.
	attr := f.v.GetStringAttributeAtIndex(-1, key)
	if attr.C == nil {
		return "", false
	}

	return attr.GetStringValue(), true
}

// CallSite describes a direct call made from a function body.
type CallSite struct {
	Callee string
	Tail   bool
}

// Calls returns the direct calls in the function body in program order.
// Indirect calls are reported with an empty callee.
func (f *Function) Calls() []CallSite {
	var calls []CallSite

	for bb := f.v.FirstBasicBlock(); bb.C != nil; bb = llvm.NextBasicBlock(bb) {
		for inst := bb.FirstInstruction(); !inst.IsNil(); inst = llvm.NextInstruction(inst) {
			if inst.IsACallInst().IsNil() {
				continue
			}

			callee := ""
			if cv := inst.CalledValue(); !cv.IsAFunction().IsNil() {
				callee = cv.Name()
			}

			calls = append(calls, CallSite{Callee: callee, Tail: inst.IsTailCall()})
		}
	}

	return calls
}

// SwitchCases returns the number of cases of each switch terminator in the
// function body in program order.  The default destination is not a case.
func (f *Function) SwitchCases() []int {
	var cases []int

	for bb := f.v.FirstBasicBlock(); bb.C != nil; bb = llvm.NextBasicBlock(bb) {
		term := bb.LastInstruction()
		if term.IsNil() || term.IsASwitchInst().IsNil() {
			continue
		}

		// Operands are the condition and default destination followed by a
		// value and destination per case.
		cases = append(cases, (term.OperandsCount()-2)/2)
	}

	return cases
}
