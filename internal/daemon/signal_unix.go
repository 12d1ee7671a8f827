package daemon

import "syscall"

// processAliveSignal is sent to probe whether a PID is alive without
// actually affecting the target process.
var processAliveSignal = syscall.Signal(0)
