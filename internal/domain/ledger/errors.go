package ledger

import "errors"

// StorageError wraps a failure of the underlying store. It is not retried.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "failed to " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Wrap builds a StorageError, passing nil and domain not-found errors through.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPostingNotFound) || errors.Is(err, ErrPurchaseNotFound) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
