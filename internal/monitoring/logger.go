// Package monitoring carries the package-level diagnostic logger shared by
// the segmenter and the tracker, so transform-lookup failures and
// numerical-failure events all log through one overridable hook instead
// of calling the log package directly. A scan that finds no subscribers
// resets the segmenter without logging.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger. Tests or an embedding process can redirect
// or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op
// logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
