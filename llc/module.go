package llc

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"tinygo.org/x/go-llvm"
)

// Module represents an LLVM module.
type Module struct {
	m   llvm.Module
	ctx *Context

	// The module identifier.  The C API only exposes it through the printed
	// IR so we keep our own copy.
	id string

	disposed bool
}

// ParseIRFile parses the textual LLVM IR file at path into a new module owned
// by the context.  The module identifier is the path.
func (c *Context) ParseIRFile(path string) (*Module, error) {
	buf, err := llvm.NewMemoryBufferFromFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	// The parser takes ownership of the buffer whether it succeeds or not.
	m, err := c.c.ParseIR(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}

	mod := &Module{m: m, ctx: c, id: path}
	c.takeOwnership(mod)
	return mod, nil
}

// ParseIR parses a string of LLVM IR into a new module owned by the context.
// The id becomes the module identifier.
func (c *Context) ParseIR(id, irText string) (*Module, error) {
	dir, err := os.MkdirTemp("", "cfgc-")
	if err != nil {
		return nil, errors.Wrap(err, "staging IR")
	}
	defer os.RemoveAll(dir)

	// LLVM derives the object's file symbol from the base name of the path
	// it read, so the staged name must not be random.
	name := filepath.Base(id)
	if name == "." || name == string(filepath.Separator) {
		name = "module"
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(irText), 0o644); err != nil {
		return nil, errors.Wrap(err, "staging IR")
	}

	mod, err := c.ParseIRFile(path)
	if err != nil {
		return nil, errors.Errorf("parsing %s: %s", id, stripStagingPath(err.Error(), path))
	}

	mod.id = id
	return mod, nil
}

// stripStagingPath removes the wrapping added for the temporary file so parse
// errors point at the caller's identifier.
func stripStagingPath(msg, path string) string {
	msg = strings.TrimPrefix(msg, "parsing "+path+": ")
	return strings.ReplaceAll(msg, path, "<input>")
}

// -----------------------------------------------------------------------------

// dispose disposes of the current module.
func (m *Module) dispose() {
	if !m.disposed {
		m.m.Dispose()
		m.disposed = true
	}
}

// ID returns the module identifier.
func (m *Module) ID() string {
	return m.id
}

// Triple returns the target triple of the module.
func (m *Module) Triple() string {
	return m.m.Target()
}

// SetTriple sets the target triple of the module.
func (m *Module) SetTriple(triple string) {
	m.m.SetTarget(triple)
}

// DataLayout returns the data layout string of the module.
func (m *Module) DataLayout() string {
	return m.m.DataLayout()
}

// SetDataLayout sets the data layout string of the module.
func (m *Module) SetDataLayout(layout string) {
	m.m.SetDataLayout(layout)
}

// String returns the textual LLVM IR of the module.
func (m *Module) String() string {
	return m.m.String()
}

// WriteToFile writes the LLVM IR of the module to a file.
func (m *Module) WriteToFile(path string) error {
	return errors.Wrapf(os.WriteFile(path, []byte(m.m.String()), 0o644), "writing %s", path)
}

// Verify checks the module for well-formedness.
func (m *Module) Verify() error {
	if err := llvm.VerifyModule(m.m, llvm.ReturnStatusAction); err != nil {
		return errors.Wrapf(err, "verifying %s", m.id)
	}

	return nil
}

// Functions returns an iterator over the functions of the module.
func (m *Module) Functions() Iterator[*Function] {
	return &funcIter{mod: m}
}

type funcIter struct {
	mod     *Module
	curr    llvm.Value
	started bool
}

func (fi *funcIter) Item() *Function {
	return &Function{v: fi.curr, ctx: fi.mod.ctx}
}

func (fi *funcIter) Next() bool {
	if !fi.started {
		fi.curr = fi.mod.m.FirstFunction()
		fi.started = true
	} else if !fi.curr.IsNil() {
		fi.curr = llvm.NextFunction(fi.curr)
	}

	return !fi.curr.IsNil()
}
