//go:build linux || darwin || freebsd || netbsd || openbsd

package terminal

import (
	"time"

	"golang.org/x/sys/unix"
)

const waitSupported = true

// waitReadable blocks until fd has input or timeout passes.
// An interrupted wait counts as "no input" so the caller just polls again.
func waitReadable(fd int, timeout time.Duration) (bool, error) {
	var readFds unix.FdSet
	readFds.Zero()
	readFds.Set(fd)

	tv := unix.NsecToTimeval(timeout.Nanoseconds())
	n, err := unix.Select(fd+1, &readFds, nil, nil, &tv)
	if err != nil {
		if err == unix.EINTR {
			return false, nil
		}
		return false, err
	}

	return n > 0 && readFds.IsSet(fd), nil
}
