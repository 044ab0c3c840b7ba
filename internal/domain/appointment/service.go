package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/medconsult/medconsult/internal/domain/identity"
)

var (
	ErrDoctorNotFound = errors.New("doctor not found")
	ErrInvalidSlot    = errors.New("appointment slot must be morning or afternoon")
	ErrNotCancelable  = errors.New("only scheduled appointments can be canceled")
)

type Service struct {
	repo    Repository
	doctors identity.DoctorRepository
}

func NewService(repo Repository, doctors identity.DoctorRepository) *Service {
	return &Service{repo: repo, doctors: doctors}
}

type BookInput struct {
	DoctorID uuid.UUID
	Date     string // 2006-01-02
	Slot     string
	Symptoms string
	IsUrgent bool
}

// Book schedules a doctor consultation in the requested slot. The slot maps
// to a fixed hour on the requested day; the department is taken from the
// doctor's specialty.
func (s *Service) Book(ctx context.Context, patientID uuid.UUID, in BookInput) (*DoctorConsultation, error) {
	doctor, err := s.doctors.GetByID(ctx, in.DoctorID)
	if errors.Is(err, identity.ErrNotFound) {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, err
	}

	var hour int
	switch in.Slot {
	case SlotMorning:
		hour = morningHour
	case SlotAfternoon:
		hour = afternoonHour
	default:
		return nil, ErrInvalidSlot
	}

	day, err := time.ParseInLocation("2006-01-02", in.Date, time.UTC)
	if err != nil {
		return nil, errors.New("appointment date must be formatted as 2006-01-02")
	}

	var department string
	if doctor.Specialty != nil {
		department = *doctor.Specialty
	}

	d := &DoctorConsultation{
		PatientID:       patientID,
		DoctorID:        doctor.ID,
		AppointmentTime: day.Add(time.Duration(hour) * time.Hour),
		Department:      department,
		Symptoms:        in.Symptoms,
		Status:          StatusScheduled,
		IsUrgent:        in.IsUrgent,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	if doctor.FullName != nil {
		d.DoctorName = *doctor.FullName
	}
	return d, nil
}

// Cancel marks a scheduled appointment canceled. Completed and already
// canceled appointments stay as they are.
func (s *Service) Cancel(ctx context.Context, patientID, id uuid.UUID) (*DoctorConsultation, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.PatientID != patientID {
		return nil, ErrNotFound
	}
	if d.Status != StatusScheduled {
		return nil, ErrNotCancelable
	}
	d.Status = StatusCanceled
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// RecordOutcome lets the assigned doctor attach a diagnosis, completing the
// consultation. doctorUserID is the doctor's user account, not the doctor
// directory row.
func (s *Service) RecordOutcome(ctx context.Context, doctorUserID, id uuid.UUID, diagnosis string) (*DoctorConsultation, error) {
	doctor, err := s.doctors.GetByUserID(ctx, doctorUserID)
	if errors.Is(err, identity.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.DoctorID != doctor.ID {
		return nil, ErrNotFound
	}
	d.Diagnosis = diagnosis
	d.Status = StatusCompleted
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*DoctorConsultation, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// ListForDoctorUser returns the consultations assigned to the doctor behind
// a user account, newest first.
func (s *Service) ListForDoctorUser(ctx context.Context, doctorUserID uuid.UUID, limit, offset int) ([]*DoctorConsultation, error) {
	doctor, err := s.doctors.GetByUserID(ctx, doctorUserID)
	if errors.Is(err, identity.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.repo.ListByDoctor(ctx, doctor.ID, limit, offset)
}

func (s *Service) Get(ctx context.Context, patientID, id uuid.UUID) (*DoctorConsultation, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.PatientID != patientID {
		return nil, ErrNotFound
	}
	return d, nil
}
