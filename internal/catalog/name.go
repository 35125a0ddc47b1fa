package catalog

import (
	"fmt"
	"strings"
)

// MaxNameLength is the longest package name accepted.
const MaxNameLength = 127

// Name is a validated package name. The zero value is not valid.
type Name string

// String returns the name as given by the user.
func (n Name) String() string {
	return string(n)
}

// Display returns the upper-cased form used in banners.
func (n Name) Display() string {
	return strings.ToUpper(string(n))
}

// ParseName validates a user supplied package name. Names must start with an
// ASCII letter or digit, contain only letters, digits, '.', '_', '+' and '-',
// must not contain "..", and are limited to MaxNameLength bytes.
func ParseName(s string) (Name, error) {
	if s == "" {
		return "", fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if len(s) > MaxNameLength {
		return "", fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, MaxNameLength)
	}
	if strings.Contains(s, "..") {
		return "", fmt.Errorf("%w: %q contains \"..\"", ErrInvalidName, s)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isAlnum(c):
		case i > 0 && (c == '.' || c == '_' || c == '+' || c == '-'):
		default:
			return "", fmt.Errorf("%w: %q contains invalid character %q", ErrInvalidName, s, c)
		}
	}
	return Name(s), nil
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
