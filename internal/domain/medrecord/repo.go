package medrecord

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound covers both a missing record and a record owned by another
// patient.
var ErrNotFound = errors.New("medical record not found")

type Repository interface {
	Create(ctx context.Context, r *MedicalRecord) error
	// GetByPatient returns one record scoped to its owner, or ErrNotFound.
	GetByPatient(ctx context.Context, patientID, id uuid.UUID) (*MedicalRecord, error)
	// ListByPatient returns a patient's records newest first.
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, error)
}
