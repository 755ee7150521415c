package helpers

import (
	"errors"
	"strings"
)

// GetSplitPart splits target around separate and returns the part at index.
// A negative index counts from the end, so -1 is the last part.
func GetSplitPart(target string, separate string, index int) (string, error) {
	parts := strings.Split(target, separate)
	if index < 0 {
		index += len(parts)
	}
	if index < 0 || index >= len(parts) {
		return "", errors.New("index out of range")
	}
	return parts[index], nil
}
