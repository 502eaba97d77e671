//go:build unix

package session

import (
	"os"

	"golang.org/x/sys/unix"
)

var interruptSignals = []os.Signal{unix.SIGINT, unix.SIGTERM}
