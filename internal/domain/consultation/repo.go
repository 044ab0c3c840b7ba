package consultation

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound covers both a missing consultation and one owned by another
// patient; callers must not be able to tell the two apart.
var ErrNotFound = errors.New("consultation not found")

type ConsultationRepository interface {
	Create(ctx context.Context, c *Consultation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error)
	// GetLatestByPatient returns the most recently created consultation
	// for a patient, or ErrNotFound.
	GetLatestByPatient(ctx context.Context, patientID uuid.UUID) (*Consultation, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Consultation, error)
	Update(ctx context.Context, c *Consultation) error
}

type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	// MaxSeq returns the highest sequence number in a consultation, or 0.
	MaxSeq(ctx context.Context, consultationID uuid.UUID) (int, error)
	// ListByConsultation returns messages ordered by (created_at, seq).
	ListByConsultation(ctx context.Context, consultationID uuid.UUID) ([]*Message, error)
	// ListByPatient returns all messages across a patient's consultations
	// ordered by (created_at, seq).
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Message, error)
}
