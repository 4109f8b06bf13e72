package capture

import (
	"context"
	"fmt"
	"time"
)

// Snapshot is a best-effort view of an in-flight capture. When the query
// cannot be answered the snapshot degrades to Known=false rather than
// surfacing an error.
type Snapshot struct {
	Active  bool
	Elapsed time.Duration
	Known   bool
}

// Controller owns the native recording handle for one capture session at a
// time. Stop finalizes the session and yields the path of the written audio
// artifact.
type Controller interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) (string, error)
	Active() bool
	Status() Snapshot
}

// Error reports a capture device failure or an out-of-sequence call.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("capture %s failed", e.Op)
	}
	return fmt.Sprintf("capture %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
