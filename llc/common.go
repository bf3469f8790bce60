package llc

import "tinygo.org/x/go-llvm"

// ownedObject represents an LLVM object that can be disposed.
type ownedObject interface {
	// dispose frees all the resources associated with the LLVM object.  It
	// must be safe to call more than once.
	dispose()
}

// Context represents an LLVM context along with the LLVM objects created
// inside it.  Nothing created from a context outlives it.
type Context struct {
	c llvm.Context

	// The list of LLVM objects owned by this context.
	ownedObjects []ownedObject

	disposed bool
}

// NewContext creates a new LLVM context.
func NewContext() *Context {
	return &Context{c: llvm.NewContext()}
}

// takeOwnership marks the given disposable LLVM object as being owned by this
// context: this context is responsible for its disposal.
func (c *Context) takeOwnership(obj ownedObject) {
	c.ownedObjects = append(c.ownedObjects, obj)
}

// Dispose frees all the resources associated with this context: the owned
// resources in reverse order of creation and then the context itself.  Calling
// Dispose twice is a no-op.
func (c *Context) Dispose() {
	if c.disposed {
		return
	}

	for i := len(c.ownedObjects) - 1; i >= 0; i-- {
		c.ownedObjects[i].dispose()
	}
	c.ownedObjects = nil

	c.c.Dispose()
	c.disposed = true
}

// -----------------------------------------------------------------------------

// Iterator represents an iterator of LLVM objects.  This is needed because many
// LLVM C API's don't expose a way to access elements by index but do allow you
// to iterate over them.  The pattern for using iterators is as follows:
//
//	for it := v.Items(); it.Next(); {
//		item := it.Item()
//		..
//	}
type Iterator[T any] interface {
	// Item returns the current item the iterator is positioned over if it
	// exists.  If the item does not exist, the return value is invalid.
	Item() T

	// Next moves the iterator forward one element if an element exists. It
	// returns whether or not it was able to move the iterator forward. Next
	// should be called to get the first element.
	Next() bool
}

// -----------------------------------------------------------------------------

func init() {
	// Initialize all output targets along with their assembly printers so any
	// registered target can produce both assembly and object code.
	llvm.InitializeAllTargetInfos()
	llvm.InitializeAllTargets()
	llvm.InitializeAllTargetMCs()
	llvm.InitializeAllAsmParsers()
	llvm.InitializeAllAsmPrinters()
}
