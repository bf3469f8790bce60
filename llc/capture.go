//go:build linux || darwin

package llc

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

var captureMu sync.Mutex

// CaptureStderr runs fn while file descriptor 2 is redirected into a pipe and
// returns everything written to it.  LLVM writes its diagnostics straight to
// the descriptor so redirecting os.Stderr alone would miss them.
func CaptureStderr(fn func() error) (string, error) {
	captureMu.Lock()
	defer captureMu.Unlock()

	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return "", errors.Wrap(err, "creating capture pipe")
	}
	r := os.NewFile(uintptr(fds[0]), "stderr-capture")
	defer r.Close()

	saved, err := unix.Dup(unix.Stderr)
	if err != nil {
		unix.Close(fds[1])
		return "", errors.Wrap(err, "saving stderr")
	}

	if err := dupTo(fds[1], unix.Stderr); err != nil {
		unix.Close(fds[1])
		unix.Close(saved)
		return "", errors.Wrap(err, "redirecting stderr")
	}
	unix.Close(fds[1])

	done := make(chan string)
	go func() {
		b, _ := io.ReadAll(r)
		done <- string(b)
	}()

	ferr := fn()

	// Restoring fd 2 drops the last write end so the reader sees EOF.
	rerr := dupTo(saved, unix.Stderr)
	unix.Close(saved)
	out := <-done

	if rerr != nil {
		return out, errors.Wrap(rerr, "restoring stderr")
	}

	return out, ferr
}
