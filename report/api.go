package report

import (
	"fmt"
	"os"
)

// ReportICE reports an internal error.  These are errors that specifically
// result from a bug or unexpected condition occurring within the code
// generator: they are not intended to ever happen.  These errors are always
// displayed regardless of log level.
func ReportICE(message string, args ...interface{}) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.displayICE(fmt.Sprintf(message, args...))

	os.Exit(-1)
}

// ReportFatal reports a fatal error.  These are errors that should cause all
// code generation to stop immediately: the backing library could not build a
// target machine, refused an emission pipeline, etc.
func ReportFatal(message string, args ...interface{}) {
	rep.m.Lock()
	defer rep.m.Unlock()

	if rep.logLevel > LogLevelSilent {
		rep.displayFatal(fmt.Sprintf(message, args...))
	}

	os.Exit(1)
}

// ReportError reports a non-fatal, standard Go error under the given tag.
func ReportError(tag string, err error) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.isErr = true

	if rep.logLevel > LogLevelSilent {
		rep.displayEndPhase(false)
		rep.displayTagged(ErrorStyleBG, ErrorColorFG, tag, err.Error())
	}
}

// ReportWarning reports a warning under the given tag.
func ReportWarning(tag, message string, args ...interface{}) {
	rep.m.Lock()
	defer rep.m.Unlock()

	if rep.logLevel >= LogLevelWarn {
		rep.displayTagged(WarnStyleBG, WarnColorFG, tag, fmt.Sprintf(message, args...))
	}
}

// ReportInfo reports an informational message.  It is only displayed at the
// verbose log level.
func ReportInfo(tag, message string, args ...interface{}) {
	rep.m.Lock()
	defer rep.m.Unlock()

	if rep.logLevel == LogLevelVerbose {
		rep.displayTagged(InfoStyleBG, InfoColorFG, tag, fmt.Sprintf(message, args...))
	}
}

// ReportBlock reports a multi-line body such as a hex dump.  It is displayed
// at every log level except silent: the user asked for it explicitly.
func ReportBlock(tag, body string) {
	rep.m.Lock()
	defer rep.m.Unlock()

	if rep.logLevel > LogLevelSilent {
		rep.displayBlock(tag, body)
	}
}

// -----------------------------------------------------------------------------
// Below are the phase reporting functions that will only run if the log level
// is verbose.

// ReportBeginPhase starts timing a code generation phase.
func ReportBeginPhase(phase string) {
	rep.m.Lock()
	defer rep.m.Unlock()

	if rep.logLevel == LogLevelVerbose {
		rep.displayEndPhase(true)
		rep.displayBeginPhase(phase)
	}
}

// ReportEndPhase ends the current phase, if any.
func ReportEndPhase(success bool) {
	rep.m.Lock()
	defer rep.m.Unlock()

	if rep.logLevel == LogLevelVerbose {
		rep.displayEndPhase(success)
	}
}

// -----------------------------------------------------------------------------

// AnyErrors returns whether or not any errors were reported.
func AnyErrors() bool {
	rep.m.Lock()
	defer rep.m.Unlock()

	return rep.isErr
}

// CatchErrors recovers a panic escaping the code generator and reports it as
// an internal error.  It must be deferred directly for recover to work.
func CatchErrors() {
	if x := recover(); x != nil {
		if err, ok := x.(error); ok {
			ReportICE("%s", err)
		} else {
			ReportICE("%v", x)
		}
	}
}
