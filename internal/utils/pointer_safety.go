package utils

// Value dereferences v, returning the zero value for nil.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}

// ChangedPtr returns a pointer to updated when it differs from original, nil otherwise.
// Used to build partial update payloads that only carry modified fields.
func ChangedPtr[T comparable](original, updated T) *T {
	if original == updated {
		return nil
	}
	return &updated
}
