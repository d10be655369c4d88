package snapshot

import "errors"

var (
	ErrNotFound           = errors.New("snapshot object not found")
	ErrExists             = errors.New("snapshot object already exists")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	ErrUnknownSpacing     = errors.New("unknown spacing kind in snapshot")
	ErrUnknownLayer       = errors.New("snapshot references a layer it does not define")
	ErrBadPath            = errors.New("path is not a snapshot storage path")
	ErrSealNotFound       = errors.New("seal not found")
	ErrSealMismatch       = errors.New("the seal does not describe this snapshot")
	ErrSealVerifyFailed   = errors.New("the seal signature verification failed")
	ErrSealKeyMismatch    = errors.New("the seal was not made with the trusted key")
	ErrCellIDMismatch     = errors.New("the snapshot belongs to a different cell")
)
