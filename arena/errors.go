package arena

import "errors"

var (
	ErrNilHandle     = errors.New("nil handle")
	ErrForeignHandle = errors.New("handle was issued by a different arena")
	ErrHandleRange   = errors.New("handle was never issued by this arena")
	ErrStaleHandle   = errors.New("handle references a freed record")
	ErrKindMismatch  = errors.New("handle references a record of a different type")
	ErrReleased      = errors.New("the arena has been released")
)
