// Package validate checks request payloads before they reach the service
// layer. Each function returns a field → message map; an empty map means the
// payload is valid. Handlers turn a non-empty map into apperror.Validation.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// Field length limits, matching the column widths in the sqlite schema.
const (
	MaxEmailLength       = 255
	MinLoginLength       = 3
	MaxLoginLength       = 64
	MinPasswordLength    = 8
	MaxPasswordLength    = 64
	MaxDeckNameLength    = 90
	MaxDescriptionLength = 200
	MaxCardTextLength    = 200
)

var (
	emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	loginRe = regexp.MustCompile(`^[A-Za-z0-9_.\-]{3,64}$`)
	// Passwords allow printable ASCII minus space; card text additionally
	// allows cyrillic letters and whitespace.
	passwordRe = regexp.MustCompile(`^[A-Za-z0-9~` + "`" + `!@#$%^&*()_\-+={\[}\]|\\:;"'<,>.?/]{8,64}$`)
	cardTextRe = regexp.MustCompile(`^[A-Za-zА-Яа-я0-9\s~` + "`" + `!@#$%^&*()_\-+={\[}\]|\\:;"'<,>.?/]*$`)
)

// Email validates an email address, writing any problem into details.
func Email(details map[string]string, email string) {
	switch {
	case email == "":
		details["email"] = "email is required"
	case len(email) > MaxEmailLength:
		details["email"] = fmt.Sprintf("email must be %d characters or less", MaxEmailLength)
	case !emailRe.MatchString(email):
		details["email"] = "invalid email format"
	}
}

// Login validates an account login: letters, digits, underscore, dot, dash.
func Login(details map[string]string, login string) {
	if !loginRe.MatchString(login) {
		details["login"] = fmt.Sprintf("login must be %d-%d characters of letters, digits, _ . -",
			MinLoginLength, MaxLoginLength)
	}
}

// Password enforces the password policy: 8-64 allowed characters with at
// least one upper, one lower, one digit and one special character.
func Password(details map[string]string, field, password string) {
	if !passwordRe.MatchString(password) {
		details[field] = fmt.Sprintf("password must be %d-%d characters without spaces or non-ASCII symbols",
			MinPasswordLength, MaxPasswordLength)
		return
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	switch {
	case !hasUpper:
		details[field] = "password must contain an uppercase letter"
	case !hasLower:
		details[field] = "password must contain a lowercase letter"
	case !hasDigit:
		details[field] = "password must contain a digit"
	case !hasSpecial:
		details[field] = "password must contain a special character"
	}
}

// Register validates a registration payload.
func Register(email, login, password string) map[string]string {
	details := map[string]string{}
	Email(details, email)
	Login(details, login)
	Password(details, "password", password)
	return details
}

// LoginRequest validates a login payload. The password is only checked for
// presence; the stored hash decides whether it is correct.
func LoginRequest(login, password string) map[string]string {
	details := map[string]string{}
	Login(details, login)
	if password == "" {
		details["password"] = "password is required"
	}
	return details
}

// UpdateProfile validates a profile update payload.
func UpdateProfile(email, login string) map[string]string {
	details := map[string]string{}
	Email(details, email)
	Login(details, login)
	return details
}

// UpdatePassword validates a password change payload.
func UpdatePassword(currentPassword, newPassword string) map[string]string {
	details := map[string]string{}
	if currentPassword == "" {
		details["currentPassword"] = "current password is required"
	}
	Password(details, "newPassword", newPassword)
	return details
}

// Deck validates a deck create/update payload.
func Deck(name, description string) map[string]string {
	details := map[string]string{}
	deckName(details, name)
	deckDescription(details, description)
	return details
}

// ImportOverride validates the optional rename applied when importing a
// shared deck. Nil fields keep the source deck's values.
func ImportOverride(name, description *string) map[string]string {
	details := map[string]string{}
	if name != nil {
		deckName(details, *name)
	}
	if description != nil {
		deckDescription(details, *description)
	}
	return details
}

func deckName(details map[string]string, name string) {
	if strings.TrimSpace(name) == "" {
		details["name"] = "deck name is required"
	} else if len([]rune(name)) > MaxDeckNameLength {
		details["name"] = fmt.Sprintf("deck name must be %d characters or less", MaxDeckNameLength)
	}
}

func deckDescription(details map[string]string, description string) {
	if len([]rune(description)) > MaxDescriptionLength {
		details["description"] = fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength)
	}
}

// Card validates a card create/update payload.
func Card(question, answer string) map[string]string {
	details := map[string]string{}
	cardText(details, "question", question)
	cardText(details, "answer", answer)
	return details
}

func cardText(details map[string]string, field, value string) {
	switch {
	case strings.TrimSpace(value) == "":
		details[field] = field + " is required"
	case len([]rune(value)) > MaxCardTextLength:
		details[field] = fmt.Sprintf("%s must be %d characters or less", field, MaxCardTextLength)
	case !cardTextRe.MatchString(value):
		details[field] = field + " contains unsupported characters"
	}
}
