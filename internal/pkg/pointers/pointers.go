package pointers

import "github.com/google/uuid"

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// UUID returns nil for uuid.Nil so optional foreign keys stay NULL.
func UUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
