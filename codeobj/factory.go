package codeobj

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds Objects for one architecture from raw backend output.
type Factory interface {
	// Arch returns the architecture name the factory is registered under.
	Arch() string

	// New wraps image in an Object named name.  It fails if the image is not
	// a relocatable object for the factory's architecture.
	New(name string, image []byte) (*Object, error)
}

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register makes a factory available under its architecture name.  It panics
// when the same architecture is registered twice so mistakes are caught
// during init.
func Register(f Factory) {
	if f == nil {
		panic("codeobj: factory must be non-nil")
	}
	if f.Arch() == "" {
		panic("codeobj: cannot register factory without an architecture")
	}

	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	if _, exists := factories[f.Arch()]; exists {
		panic(fmt.Sprintf("codeobj: factory for %s already registered", f.Arch()))
	}
	factories[f.Arch()] = f
}

// Lookup returns the factory registered for arch.
func Lookup(arch string) (Factory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	f, ok := factories[arch]
	return f, ok
}

// Archs returns the registered architecture names in sorted order.
func Archs() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	archs := make([]string, 0, len(factories))
	for arch := range factories {
		archs = append(archs, arch)
	}
	sort.Strings(archs)

	return archs
}
