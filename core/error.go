// Package core is the runtime support library that generated boundary code
// links against. It owns the process-wide last-error slot, the opaque handle
// table for reference types, and the pinned allocations backing string and
// collection payloads while they are on the foreign side of the boundary.
//
// The boundary protocol is single-threaded by contract; nothing in this
// package takes a lock on the caller's behalf.
package core

// lastError is the process-wide last-error slot. Boundary calls clear it on
// entry and set it on failure; consumers read it immediately after a call
// that returned a failure sentinel.
var lastError string

// SetLastErrMsg stores msg in the last-error slot.
//
// A boundary function that fails should return something that signals the
// failure to the consumer (a null pointer, a cleared presence flag) and
// record a description of the failure here.
func SetLastErrMsg(msg string) {
	lastError = msg
}

// ClearLastErrMsg empties the last-error slot.
//
// Called at the start of every boundary function so that consumers never
// retrieve an earlier call's error after a call that succeeded.
func ClearLastErrMsg() {
	lastError = ""
}

// LastErrMsg returns the current contents of the last-error slot, empty if
// the most recent boundary call succeeded.
func LastErrMsg() string {
	return lastError
}
