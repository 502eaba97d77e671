//go:build unix

package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"

	"pipelined.dev/hush/session"
)

func TestInterruptSignal(t *testing.T) {
	f := newFixture(t, session.WithSignals(unix.SIGUSR1))
	errc := f.run(context.Background())
	// signals are subscribed before the stream is started
	f.waitStarted(t)
	assert.NoError(t, unix.Kill(unix.Getpid(), unix.SIGUSR1))
	assert.NoError(t, <-errc)
	assert.True(t, f.control.ShuttingDown())
	assert.Equal(t, lifecycle, f.journal.Calls())
}

func TestInterruptWhileOpening(t *testing.T) {
	f := newFixture(t, session.WithSignals(unix.SIGUSR1))
	f.terminal.OnOpen = func() {
		assert.NoError(t, unix.Kill(unix.Getpid(), unix.SIGUSR1))
	}
	assert.NoError(t, f.session.Run(context.Background()))
	assert.True(t, f.control.ShuttingDown())
	assert.Equal(t, lifecycle, f.journal.Calls())
	assert.True(t, f.terminal.Restored)
}
