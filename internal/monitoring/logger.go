// Package monitoring holds the diagnostic logger shared by the processing
// and storage packages.
package monitoring

import (
	"fmt"
	"log"
	"sync"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Prefixed returns a logger that writes through the current Logf with
// prefix prepended to the format.
func Prefixed(prefix string) func(format string, v ...interface{}) {
	return func(format string, v ...interface{}) {
		Logf(prefix+format, v...)
	}
}

// Recorder collects formatted log lines. It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

// Logf formats and records one line.
func (r *Recorder) Logf(format string, v ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf(format, v...))
}

// Lines returns a copy of the recorded lines.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}
