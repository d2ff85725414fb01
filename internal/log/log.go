// Package log is a thin shim over glog: leveled, flag-controlled
// output with a process-wide silence switch for batch runs.
package log

import "github.com/golang/glog"

var enabled = true

// DisableLogger suppresses non-error output (the -silent flag).
func DisableLogger() {
	enabled = false
}

// EnableLogger re-enables non-error output.
func EnableLogger() {
	enabled = true
}

// Output logs an informational line, gated by DisableLogger.
func Output(args ...interface{}) {
	if enabled {
		glog.Infoln(args...)
	}
}

// Outputf logs a formatted informational line, gated by DisableLogger.
func Outputf(format string, args ...interface{}) {
	if enabled {
		glog.Infof(format, args...)
	}
}

// Warn logs a warning line unconditionally — warnings are never
// suppressed by -silent.
func Warn(args ...interface{}) {
	glog.Warningln(args...)
}
