package core

// DebugMode controls whether build errors carry a stack trace. Config
// sets it from diagnostics.debug.
var DebugMode = true

// SetDebugMode enables or disables debug mode for the framework.
func SetDebugMode(debug bool) {
	DebugMode = debug
}
