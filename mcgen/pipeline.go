package mcgen

import "strings"

// Pass is one step of the function optimization pipeline.
type Pass struct {
	// Name is the pass name in LLVM's textual pipeline syntax.
	Name string

	// Params are the optional `<...>` parameters of the pass.
	Params string

	// Class is the name LLVM reports for the pass when it runs.
	Class string
}

func (p Pass) String() string {
	if p.Params == "" {
		return p.Name
	}

	return p.Name + "<" + p.Params + ">"
}

// Pipeline is an ordered sequence of function passes.
type Pipeline []Pass

// DefaultPipeline returns the fixed function pipeline run by every generator.
// Order matters: the trailing simplifycfg is the only one allowed to turn
// switches into lookup tables and it must see the CFG after all other
// canonicalization has settled.
func DefaultPipeline() Pipeline {
	return Pipeline{
		{Name: "lower-expect", Class: "LowerExpectIntrinsicPass"},
		{Name: "simplifycfg", Class: "SimplifyCFGPass"},
		{Name: "instcombine", Class: "InstCombinePass"},
		{Name: "reassociate", Class: "ReassociatePass"},
		{Name: "early-cse", Class: "EarlyCSEPass"},
		{Name: "gvn", Class: "GVNPass"},
		{Name: "sccp", Class: "SCCPPass"},
		{Name: "dce", Class: "DCEPass"},
		{Name: "simplifycfg", Class: "SimplifyCFGPass"},
		{Name: "instcombine", Class: "InstCombinePass"},
		{Name: "simplifycfg", Params: "switch-to-lookup", Class: "SimplifyCFGPass"},
	}
}

// String renders the pipeline as a module pipeline: the function adaptor
// wrapping the passes in order.
func (p Pipeline) String() string {
	parts := make([]string, len(p))
	for i, pass := range p {
		parts[i] = pass.String()
	}

	return "function(" + strings.Join(parts, ",") + ")"
}

// PassNames returns the class names the pipeline reports for each function,
// in execution order.
func (p Pipeline) PassNames() []string {
	names := make([]string, len(p))
	for i, pass := range p {
		names[i] = pass.Class
	}

	return names
}
