//go:build !linux && !darwin

package llc

// CaptureStderr runs fn without capturing anything: descriptor redirection is
// only wired up on unix hosts.
func CaptureStderr(fn func() error) (string, error) {
	return "", fn()
}
