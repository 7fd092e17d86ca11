// Package monitoring holds the process-wide logging hooks shared by the
// commands: a replaceable summary logger and the writer selection for the
// per-package ops, diag and trace streams.
package monitoring

import (
	"io"
	"log"
)

// Logf is the summary logger used by commands. It defaults to log.Printf but
// may be replaced by SetLogger, for example with testing.T.Logf.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Streams are the writers handed to each package's SetLogWriters. A nil
// writer disables that stream.
type Streams struct {
	Ops   io.Writer
	Diag  io.Writer
	Trace io.Writer
}

// NewStreams routes the enabled streams to w. Ops is always on; diag follows
// verbose and trace follows trace.
func NewStreams(w io.Writer, verbose, trace bool) Streams {
	s := Streams{Ops: w}
	if verbose {
		s.Diag = w
	}
	if trace {
		s.Trace = w
	}
	return s
}
