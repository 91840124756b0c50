package api

import "errors"

// ErrorOutofMemory operation cannot succeed because the OS refused a
// needed mapping, or the heap's configured capacity is exhausted.
var ErrorOutofMemory = errors.New("outofmemory")

// ErrorInvalidPointer operation was given a pointer that was not vended
// by this heap, best-effort detection only.
var ErrorInvalidPointer = errors.New("invalidpointer")
