// Package normalize holds small helpers that fold user input into the
// canonical forms stored in the database.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace from a person or title field.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role string for comparison.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DoorState uppercases a door sensor state the way the sensor firmware
// is expected to send it.
func DoorState(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
