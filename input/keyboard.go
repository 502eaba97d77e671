package input

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"fortio.org/safecast"
	"github.com/eiannone/keyboard"
	"golang.org/x/term"
)

// keyBuffer is the capacity of the key event channel.
const keyBuffer = 16

// ErrNotTerminal is returned when stdin is not an interactive terminal.
var ErrNotTerminal = errors.New("stdin is not a terminal")

// Keyboard reads keys from the controlling terminal in raw mode.
type Keyboard struct {
	in   *os.File
	keys <-chan keyboard.KeyEvent

	once sync.Once
	err  error
}

// NewKeyboard returns a keyboard of the process terminal.
func NewKeyboard() *Keyboard {
	return &Keyboard{in: os.Stdin}
}

// Open switches the terminal into raw mode and starts reading keys.
func (k *Keyboard) Open() error {
	fd, err := safecast.Conv[int](k.in.Fd())
	if err != nil || !term.IsTerminal(fd) {
		return ErrNotTerminal
	}
	keys, err := keyboard.GetKeys(keyBuffer)
	if err != nil {
		return fmt.Errorf("open keyboard: %w", err)
	}
	k.keys = keys
	return nil
}

// Keys returns the key events. The channel is closed by Restore.
func (k *Keyboard) Keys() <-chan keyboard.KeyEvent {
	return k.keys
}

// Restore returns the terminal to its original mode. Only the first call
// has effect.
func (k *Keyboard) Restore() error {
	k.once.Do(func() {
		if k.keys == nil {
			return
		}
		if err := keyboard.Close(); err != nil {
			k.err = fmt.Errorf("restore terminal: %w", err)
		}
	})
	return k.err
}
