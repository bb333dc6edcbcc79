package validation

import (
	"testing"
	"time"
)

func TestValidateNonEmptyString(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		value     string
		wantErr   bool
	}{
		{"valid string", "titulo", "Festa junina", false},
		{"empty string", "titulo", "", true},
		{"whitespace only", "texto", "   ", true},
		{"single char", "texto", "a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNonEmptyString(tt.fieldName, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNonEmptyString(%q, %q) error = %v, wantErr %v", tt.fieldName, tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid", "professor@escola.com", false},
		{"subdomain", "ana@mail.escola.com.br", false},
		{"empty", "", true},
		{"missing at", "professor.escola.com", true},
		{"display name form", "Ana <ana@escola.com>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateUUID(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid", "7c9e6679-7425-40de-944b-e07fc1f90ae7", false},
		{"integer id", "42", true},
		{"empty", "", true},
		{"truncated", "7c9e6679-7425-40de-944b", true},
		{"braced", "{7c9e6679-7425-40de-944b-e07fc1f90ae7}", true},
		{"urn", "urn:uuid:7c9e6679-7425-40de-944b-e07fc1f90ae7", true},
		{"undashed", "7c9e6679742540de944be07fc1f90ae7", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUUID("aluno_id", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUUID(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDate(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"today", "2024-05-10", false},
		{"past", "2023-12-01", false},
		{"tomorrow", "2024-05-11", true},
		{"wrong layout", "10/05/2024", true},
		{"invalid day", "2024-02-30", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDate("data", tt.value, now)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDate(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateHorario(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"lunch", "12:30", false},
		{"midnight", "00:00", false},
		{"last minute", "23:59", false},
		{"hour out of range", "24:00", true},
		{"minute out of range", "10:60", true},
		{"single digit hour", "9:15", true},
		{"with seconds", "09:15:00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHorario(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHorario(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePage(t *testing.T) {
	tests := []struct {
		name    string
		page    int
		wantErr bool
	}{
		{"first", 1, false},
		{"later", 7, false},
		{"zero", 0, true},
		{"negative", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePage(tt.page)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePage(%d) error = %v, wantErr %v", tt.page, err, tt.wantErr)
			}
		})
	}
}
