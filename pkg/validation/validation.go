package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DateLayout = "2006-01-02"
	MinPage    = 1
)

const canonicalUUIDLength = 36

var horarioPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

func ValidateNonEmptyString(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

func ValidateEmail(email string) error {
	if err := ValidateNonEmptyString("email", email); err != nil {
		return err
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address: %s", email)
	}
	return nil
}

// ValidateUUID accepts only the dashed 8-4-4-4-12 form. uuid.Parse also takes braced, urn and
// undashed spellings, which would reach the backend as-is.
func ValidateUUID(fieldName, value string) error {
	if len(value) != canonicalUUIDLength {
		return fmt.Errorf("%s must be a UUID in the 8-4-4-4-12 form, got %q", fieldName, value)
	}
	if _, err := uuid.Parse(value); err != nil {
		return fmt.Errorf("%s must be a UUID, got %q", fieldName, value)
	}
	return nil
}

// ValidateDate checks a YYYY-MM-DD date that is not later than now.
func ValidateDate(fieldName, value string, now time.Time) error {
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return fmt.Errorf("%s must use the YYYY-MM-DD format, got %q", fieldName, value)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.After(today) {
		return fmt.Errorf("%s cannot be in the future: %s", fieldName, value)
	}
	return nil
}

func ValidateHorario(value string) error {
	if !horarioPattern.MatchString(value) {
		return fmt.Errorf("horario must use the HH:MM format, got %q", value)
	}
	return nil
}

func ValidatePage(page int) error {
	if page < MinPage {
		return fmt.Errorf("page must be at least %d, got %d", MinPage, page)
	}
	return nil
}
