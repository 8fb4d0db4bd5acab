package utils

func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}

// NonEmptyPtr returns nil for the zero string so optional columns stay unset
func NonEmptyPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// ClonePtr copies the pointed-to value so callers cannot alias stored data
func ClonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
