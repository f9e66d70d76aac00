package artifact

import "errors"

var (
	// ErrNotFound is returned when the requested document or version does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidID is returned when a document id fails validation.
	ErrInvalidID = errors.New("invalid document id")

	// ErrInvalidKind is returned when a document kind is not in the known set.
	ErrInvalidKind = errors.New("invalid document kind")
)

// ValidateID checks if the producer-assigned document id is safe for use.
// Returns ErrInvalidID if validation fails.
//
// Validation rules:
//   - Must not be empty
//   - Must not exceed 128 characters
//   - Must not contain whitespace, control characters, or null bytes
func ValidateID(id string) error {
	if id == "" {
		return ErrInvalidID
	}
	if len(id) > 128 {
		return ErrInvalidID
	}
	for _, c := range id {
		if c <= ' ' || c == 0x7f {
			return ErrInvalidID
		}
	}
	return nil
}
