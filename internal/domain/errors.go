package domain

import (
	"errors"
	"fmt"
)

// ErrDataIntegrity matches every IntegrityError.
var ErrDataIntegrity = errors.New("data integrity error")

// IntegrityError reports a record that the pipeline cannot summarize faithfully.
type IntegrityError struct {
	Index   int // position of the record in the API response
	AssetID string
	Reason  string
}

func (e *IntegrityError) Error() string {
	if e.AssetID == "" {
		return fmt.Sprintf("data integrity: record %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("data integrity: record %d (asset %s): %s", e.Index, e.AssetID, e.Reason)
}

// Is reports ErrDataIntegrity as a match so callers can use errors.Is.
func (e *IntegrityError) Is(target error) bool {
	return target == ErrDataIntegrity
}
