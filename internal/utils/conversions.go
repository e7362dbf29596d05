package utils

// ToStringSlice keeps the string elements of slice.
func ToStringSlice(slice []any) []string {
	stringSlice := make([]string, 0)
	for _, v := range slice {
		if s, ok := v.(string); ok {
			stringSlice = append(stringSlice, s)
		}
	}
	return stringSlice
}

// Messages normalises a decoded JSON value that may be a single message or a list of messages.
func Messages(v any) []string {
	switch m := v.(type) {
	case string:
		return []string{m}
	case []any:
		return ToStringSlice(m)
	case []string:
		return m
	default:
		return nil
	}
}
