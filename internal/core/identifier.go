package core

import "fmt"

// IdentifierLength is the number of digits in a national identity number.
const IdentifierLength = 13

// Identifier is a validated 13-digit registration number. It is text, not a
// number: leading zeros are significant and comparison is exact.
type Identifier string

// ParseIdentifier validates s as exactly 13 ASCII digits with no separators.
// Errors wrap ErrInvalidFormat.
func ParseIdentifier(s string) (Identifier, error) {
	if len(s) != IdentifierLength {
		return "", fmt.Errorf("%w: %q must be %d digits without dashes", ErrInvalidFormat, s, IdentifierLength)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", fmt.Errorf("%w: %q must be %d digits without dashes", ErrInvalidFormat, s, IdentifierLength)
		}
	}
	return Identifier(s), nil
}

// IsZero reports whether the identifier is unset.
func (id Identifier) IsZero() bool {
	return id == ""
}

// String returns the 13 digits.
func (id Identifier) String() string {
	return string(id)
}

// Formatted returns the identifier in the printed XXXXX-XXXXXXX-X layout.
func (id Identifier) Formatted() string {
	if len(id) != IdentifierLength {
		return string(id)
	}
	return string(id[:5]) + "-" + string(id[5:12]) + "-" + string(id[12:])
}
