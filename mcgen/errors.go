package mcgen

// FatalError is a failure the generator cannot continue past: the backing
// library either could not build a target machine or refused to run one of
// its pipelines.  Callers are expected to abort.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Cause lets github.com/pkg/errors see through the wrapper.
func (e *FatalError) Cause() error {
	return e.Err
}
