// Package llm wraps the external reasoning service used for chat answers and
// medical record synthesis. The service is a black box behind two calls: a
// single-turn question/answer exchange and a structured record generation
// request keyed by patient name.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable means the reasoning service was unreachable or the
	// call timed out.
	ErrUnavailable = errors.New("reasoning service unavailable")
	// ErrMalformed means the reasoning service responded, but the payload
	// was missing required fields or carried an application-level error.
	ErrMalformed = errors.New("reasoning service returned malformed response")
)

// Encounter is one prior clinical encounter in a structured record response.
type Encounter struct {
	Diagnosis string `json:"diagnosis"`
	Date      string `json:"date,omitempty"`
	Summary   string `json:"summary,omitempty"`
}

// StructuredRecord is the reasoning service's synthesis output.
type StructuredRecord struct {
	PatientName string      `json:"patient_name"`
	Summary     string      `json:"summary"`
	Encounters  []Encounter `json:"encounters"`
}

// Client is the call contract consumed by the consultation and medical
// record services.
type Client interface {
	// Answer performs a single-turn Q&A exchange.
	Answer(ctx context.Context, question string) (string, error)
	// GenerateRecord asks the service to synthesize a structured clinical
	// record for the named patient.
	GenerateRecord(ctx context.Context, patientName string) (*StructuredRecord, error)
}
