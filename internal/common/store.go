package common

import "fmt"

// StoreError wraps a backend failure so callers can match it with
// ErrStoreUnavailable while keeping the driver error in the chain.
func StoreError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
