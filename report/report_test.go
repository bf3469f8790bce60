package report

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	for name, want := range map[string]int{
		"silent":  LogLevelSilent,
		"error":   LogLevelError,
		"warn":    LogLevelWarn,
		"verbose": LogLevelVerbose,
	} {
		got, ok := ParseLogLevel(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := ParseLogLevel("loud")
	assert.False(t, ok)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitReporter(LogLevelWarn, &buf)
	defer InitReporter(LogLevelVerbose, nil)

	ReportInfo("Target", "selected %s", "amd64-linux")
	assert.NotContains(t, buf.String(), "amd64-linux")

	ReportWarning("Codegen", "dumpBits ignored for %s", "asm")
	assert.Contains(t, buf.String(), "dumpBits ignored for asm")

	assert.False(t, AnyErrors())
	ReportError("Target Error", errors.New("unknown target `z80`"))
	assert.Contains(t, buf.String(), "unknown target `z80`")
	assert.True(t, AnyErrors())
}

func TestSilentSuppressesEverything(t *testing.T) {
	var buf bytes.Buffer
	InitReporter(LogLevelSilent, &buf)
	defer InitReporter(LogLevelVerbose, nil)

	ReportWarning("Codegen", "hidden")
	ReportBlock("Object", "00000000  c3")
	ReportError("Parse Error", errors.New("hidden"))

	assert.Empty(t, buf.String())
	assert.True(t, AnyErrors())
}

func TestBlockAndPhases(t *testing.T) {
	var buf bytes.Buffer
	InitReporter(LogLevelVerbose, &buf)
	defer InitReporter(LogLevelVerbose, nil)

	ReportBlock("Object", "line one\nline two\n")
	assert.Contains(t, buf.String(), "  line one\n")
	assert.Contains(t, buf.String(), "  line two\n")

	buf.Reset()
	ReportBeginPhase("Optimizing")
	ReportEndPhase(true)
	assert.Contains(t, buf.String(), "Optimizing")
	assert.Regexp(t, `\(\d+\.\d{3}s\)`, buf.String())

	// A second end without a begin prints nothing.
	buf.Reset()
	ReportEndPhase(true)
	assert.Empty(t, buf.String())
}

func TestReinitWhileReporting(t *testing.T) {
	var buf bytes.Buffer
	InitReporter(LogLevelWarn, &buf)
	defer InitReporter(LogLevelVerbose, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			InitReporter(LogLevelWarn, &buf)
		}()
		go func(i int) {
			defer wg.Done()
			ReportWarning("Codegen", "worker %d", i)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, LogLevelWarn, LogLevel())
	assert.Equal(t, 8, strings.Count(buf.String(), "worker "))
}
