package llm

import (
	"errors"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestParseStructuredRecord_Valid(t *testing.T) {
	raw := `{
		"patient_name": "Jane Doe",
		"summary": "Recurring headaches over two weeks.",
		"encounters": [
			{"diagnosis": "tension headache", "date": "2024-01-02"},
			{"diagnosis": "migraine"}
		]
	}`

	record, err := ParseStructuredRecord(raw)
	if err != nil {
		t.Fatalf("ParseStructuredRecord: %v", err)
	}
	if record.PatientName != "Jane Doe" {
		t.Errorf("expected patient name Jane Doe, got %q", record.PatientName)
	}
	if len(record.Encounters) != 2 {
		t.Fatalf("expected 2 encounters, got %d", len(record.Encounters))
	}
	if record.Encounters[0].Diagnosis != "tension headache" {
		t.Errorf("unexpected first diagnosis: %q", record.Encounters[0].Diagnosis)
	}
}

func TestParseStructuredRecord_MissingFields(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"missing summary", `{"patient_name": "Jane Doe", "encounters": []}`},
		{"missing patient_name", `{"summary": "fine", "encounters": []}`},
		{"not json", `sorry, I cannot do that`},
		{"empty", ``},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseStructuredRecord(tc.raw)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestParseStructuredRecord_NoEncounters(t *testing.T) {
	record, err := ParseStructuredRecord(`{"patient_name": "Jane Doe", "summary": "healthy"}`)
	if err != nil {
		t.Fatalf("expected no error for empty encounter list, got %v", err)
	}
	if len(record.Encounters) != 0 {
		t.Errorf("expected no encounters, got %d", len(record.Encounters))
	}
}

func TestClassifyErr(t *testing.T) {
	apiErr := &openai.APIError{Code: "server_error", Message: "internal"}
	if err := classifyErr(fmt.Errorf("call: %w", apiErr)); !errors.Is(err, ErrMalformed) {
		t.Errorf("API error should classify as malformed, got %v", err)
	}

	if err := classifyErr(errors.New("dial tcp: connection refused")); !errors.Is(err, ErrUnavailable) {
		t.Errorf("transport error should classify as unavailable, got %v", err)
	}
}
