package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound covers both a missing appointment and one belonging to another
// patient or doctor.
var ErrNotFound = errors.New("appointment not found")

type Repository interface {
	Create(ctx context.Context, d *DoctorConsultation) error
	GetByID(ctx context.Context, id uuid.UUID) (*DoctorConsultation, error)
	// GetLatestByPatient returns the most recently created doctor
	// consultation for a patient, or ErrNotFound.
	GetLatestByPatient(ctx context.Context, patientID uuid.UUID) (*DoctorConsultation, error)
	// ListByPatient returns a patient's consultations newest first.
	// A limit <= 0 returns all rows.
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*DoctorConsultation, error)
	// ListByDoctor returns a doctor's consultations newest first.
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*DoctorConsultation, error)
	Update(ctx context.Context, d *DoctorConsultation) error
}
