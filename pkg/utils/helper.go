package utils

import (
	"strconv"
)

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	if result < 1 {
		return defaultValue
	}

	return result
}

// ParseInt64 converts string to int64, returning false on bad input
func ParseInt64(value string) (int64, bool) {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil || result < 1 {
		return 0, false
	}
	return result, true
}
