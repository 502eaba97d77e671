// Package log configures loggers of hush components.
package log

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
)

// DebugEnv enables debug level when it parses as true.
const DebugEnv = "HUSH_DEBUG"

var debug bool

func init() {
	var err error
	debug, err = strconv.ParseBool(os.Getenv(DebugEnv))
	if err != nil {
		debug = false
	}
}

// GetLogger returns a new logger instance that writes to stderr. Line
// endings are safe for a terminal in raw mode.
func GetLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(Raw(os.Stderr))
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: !debug,
	})
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Raw wraps w to terminate lines with "\r\n". A terminal in raw mode
// doesn't return the carriage on line feed.
func Raw(w io.Writer) io.Writer {
	return &rawWriter{w: w}
}

type rawWriter struct {
	mu  sync.Mutex
	w   io.Writer
	buf bytes.Buffer
}

var (
	lf   = []byte("\n")
	crlf = []byte("\r\n")
)

// Write returns len(p) on success, even though inserted carriage returns
// make the output longer.
func (r *rawWriter) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf.Reset()
	rest := p
	for {
		i := bytes.Index(rest, lf)
		if i < 0 {
			r.buf.Write(rest)
			break
		}
		line := rest[:i]
		r.buf.Write(line)
		if len(line) > 0 && line[len(line)-1] == '\r' {
			r.buf.Write(lf)
		} else {
			r.buf.Write(crlf)
		}
		rest = rest[i+1:]
	}
	if _, err := r.w.Write(r.buf.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}
