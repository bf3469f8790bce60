//go:build linux || darwin

package llc

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestCaptureStderr(t *testing.T) {
	out, err := CaptureStderr(func() error {
		_, err := unix.Write(unix.Stderr, []byte("Running pass: DCEPass on add\n"))
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "Running pass: DCEPass on add\n", out)

	// The descriptor is restored afterwards.
	_, err = os.Stderr.Stat()
	assert.NoError(t, err)
}
