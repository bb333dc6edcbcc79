package validation

import (
	"strings"
	"testing"
	"time"
)

func TestValidateNonEmptyString_FieldNames(t *testing.T) {
	// Field name appears in the error message
	fields := []string{"email", "password", "titulo", "conteudo", "atividades[0].tipo"}

	for _, field := range fields {
		t.Run(field, func(t *testing.T) {
			err := ValidateNonEmptyString(field, "")
			if err == nil {
				t.Error("Expected error for empty string")
				return
			}
			if !strings.Contains(err.Error(), field) {
				t.Errorf("Error message should contain field name %q: %v", field, err)
			}
		})
	}
}

func TestValidateNonEmptyString_Whitespace(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"tab", "\t", true},
		{"newline", "\n", true},
		{"mixed whitespace", " \t\n ", true},
		{"leading space", " texto", false},
		{"unicode", "Observação", false},
		{"very long string", strings.Repeat("a", 10000), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNonEmptyString("texto", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNonEmptyString(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDate_DayBoundary(t *testing.T) {
	// Late evening in a zone behind UTC still counts as the local calendar day
	loc := time.FixedZone("BRT", -3*60*60)
	now := time.Date(2024, 5, 10, 23, 50, 0, 0, loc)

	if err := ValidateDate("data", "2024-05-10", now); err != nil {
		t.Errorf("same local day should be valid: %v", err)
	}
	if err := ValidateDate("data", "2024-05-11", now); err == nil {
		t.Error("next local day should be rejected")
	}
}

func TestValidateDate_ErrorMentionsField(t *testing.T) {
	err := ValidateDate("data_validade", "amanhã", time.Now())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "data_validade") {
		t.Errorf("Error message should mention the field: %v", err)
	}
}

func TestValidateUUID_CaseInsensitive(t *testing.T) {
	if err := ValidateUUID("id", "7C9E6679-7425-40DE-944B-E07FC1F90AE7"); err != nil {
		t.Errorf("uppercase UUID should be valid: %v", err)
	}
}

func TestValidateHorario_ErrorMessage(t *testing.T) {
	err := ValidateHorario("meio-dia")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "HH:MM") {
		t.Errorf("Error message should describe the format: %v", err)
	}
}
