package store

import "fmt"

// DecodeError reports a malformed persisted document. It is returned when the
// main store file or a sidecar cannot be decoded into well-formed records.
// Callers must treat it as corruption, never as an empty store: substituting an
// empty store on decode failure would wipe every prior record on the next write.
type DecodeError struct {
	Path   string // file that failed to decode
	Detail string // what was wrong with it
	Err    error  // underlying parse error, if any
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store: decode %s: %s: %v", e.Path, e.Detail, e.Err)
	}
	return fmt.Sprintf("store: decode %s: %s", e.Path, e.Detail)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// PersistenceError reports an I/O failure on the backing medium.
type PersistenceError struct {
	Op   string // "read", "write", "scan"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
