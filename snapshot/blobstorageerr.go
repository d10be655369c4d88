package snapshot

import (
	"errors"
	"fmt"

	azStorageBlob "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

const (
	azblobBlobNotFound      = "BlobNotFound"
	azblobBlobAlreadyExists = "BlobAlreadyExists"
	azblobConditionNotMet   = "ConditionNotMet"
)

func asStorageError(err error) (azStorageBlob.StorageError, bool) {
	serr := &azStorageBlob.StorageError{}
	var ierr *azStorageBlob.InternalError
	if !errors.As(err, &ierr) || ierr == nil {
		return azStorageBlob.StorageError{}, false
	}
	if !ierr.As(&serr) {
		return azStorageBlob.StorageError{}, false
	}
	return *serr, true
}

// wrapBlobNotFound translates the azure sdk blob not found error to
// ErrNotFound. Any other error, including nil, is returned as is.
func wrapBlobNotFound(err error) error {
	if err == nil {
		return nil
	}
	serr, ok := asStorageError(err)
	if !ok || serr.ErrorCode != azblobBlobNotFound {
		return err
	}
	return fmt.Errorf("%s: %w", err.Error(), ErrNotFound)
}

// wrapBlobExists translates the failure of a create only put to ErrExists.
func wrapBlobExists(err error) error {
	if err == nil {
		return nil
	}
	serr, ok := asStorageError(err)
	if !ok {
		return err
	}
	if serr.ErrorCode != azblobBlobAlreadyExists && serr.ErrorCode != azblobConditionNotMet {
		return err
	}
	return fmt.Errorf("%s: %w", err.Error(), ErrExists)
}
