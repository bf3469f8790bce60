package report

import (
	"io"
	"os"
	"sync"
	"time"
)

// Reporter is responsible for reporting errors, warnings, and other kinds of
// messages to the user during code generation.  The reporter respects the set
// log level and is synchronized: its methods can be safely called from multiple
// goroutines.
type Reporter struct {
	// The mutex used to synchonize different report calls.  It guards every
	// field below.
	m sync.Mutex

	// The selected log level of the reporter.  This must be one of the
	// enumerated log levels below.
	logLevel int

	// The diagnostic sink.  This is standard error unless a caller redirects
	// it.
	out io.Writer

	// Indicates whether or not an error has been detected.
	isErr bool

	// The phase currently being timed, if any.
	phase      string
	phaseStart time.Time
}

// Enumeration of the different possible log levels.
const (
	LogLevelSilent  = iota // Displays no output.
	LogLevelError          // Displays only errors to the user.
	LogLevelWarn           // Displays only warnings and errors to the user.
	LogLevelVerbose        // Displays all messages to the user (default).
)

// logLevelNames maps the command-line names of the log levels to the levels.
var logLevelNames = map[string]int{
	"silent":  LogLevelSilent,
	"error":   LogLevelError,
	"warn":    LogLevelWarn,
	"verbose": LogLevelVerbose,
}

// ParseLogLevel converts a log level name into its log level.
func ParseLogLevel(name string) (int, bool) {
	lvl, ok := logLevelNames[name]
	return lvl, ok
}

// rep is the global reporter instance.
var rep = &Reporter{
	logLevel: LogLevelVerbose,
	out:      os.Stderr,
}

// InitReporter resets the global reporter to write to out at the given log
// level, forgetting any reported errors and open phase.  A nil out selects
// standard error.
func InitReporter(logLevel int, out io.Writer) {
	if out == nil {
		out = os.Stderr
	}

	rep.m.Lock()
	defer rep.m.Unlock()

	rep.logLevel = logLevel
	rep.out = out
	rep.isErr = false
	rep.phase = ""
}

// LogLevel returns the log level of the global reporter.
func LogLevel() int {
	rep.m.Lock()
	defer rep.m.Unlock()

	return rep.logLevel
}
