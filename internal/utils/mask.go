package utils

// MaskSecret keeps the first 4 characters of a token so it stays recognisable in logs.
// Short values are masked entirely and empty values stay empty.
func MaskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "*****"
	default:
		return s[:4] + "*****"
	}
}
