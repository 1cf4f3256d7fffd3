//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package terminal

import (
	"errors"
	"time"
)

const waitSupported = false

func waitReadable(fd int, timeout time.Duration) (bool, error) {
	return false, errors.ErrUnsupported
}
