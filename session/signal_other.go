//go:build !unix

package session

import "os"

var interruptSignals = []os.Signal{os.Interrupt}
