// Package contacts turns free-form pasted text into validated call contacts.
package contacts

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxContacts caps a single campaign submission.
	MaxContacts = 50
	MinNameLen  = 2
	MaxNameLen  = 64
)

// Contact is one callable record ready to be sent to the campaign webhook.
type Contact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	BusinessName string `json:"business_name"`
}

var (
	e164Pattern        = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
	phoneSearchPattern = regexp.MustCompile(`\+?[1-9]\d{1,14}`)
)

// ValidName reports whether name is between MinNameLen and MaxNameLen characters.
func ValidName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= MinNameLen && n <= MaxNameLen
}

// ValidPhone reports whether phone is an E.164 number.
func ValidPhone(phone string) bool {
	return e164Pattern.MatchString(phone)
}

// NormalizePhone trims phone and adds the leading "+" when it is missing.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" || strings.HasPrefix(phone, "+") {
		return phone
	}
	return "+" + phone
}

// Valid reports whether c satisfies the name and phone rules.
func (c Contact) Valid() bool {
	return ValidName(c.Name) && ValidPhone(c.Phone)
}
