package history

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/medconsult/medconsult/internal/domain/appointment"
	"github.com/medconsult/medconsult/internal/domain/consultation"
)

const (
	TypeAI     = "ai"
	TypeDoctor = "doctor"
)

// Zero-padded layouts: fixed-width date and time strings compare correctly
// as plain strings, which the descending sort in AllRecords relies on.
const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// TaggedRecord carries the single most recent record of either kind.
// Exactly one of AI and Doctor is set, matching Type.
type TaggedRecord struct {
	Type   string                          `json:"type"`
	AI     *consultation.Consultation      `json:"ai,omitempty"`
	Doctor *appointment.DoctorConsultation `json:"doctor,omitempty"`
}

// RecordSummary is the flattened list form shared by both record kinds.
type RecordSummary struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	Status     string    `json:"status"`
	Summary    string    `json:"summary"`
	Doctor     string    `json:"doctor,omitempty"`
	Department string    `json:"department,omitempty"`
}

type Service struct {
	consultations consultation.ConsultationRepository
	appointments  appointment.Repository
}

func NewService(consultations consultation.ConsultationRepository, appointments appointment.Repository) *Service {
	return &Service{consultations: consultations, appointments: appointments}
}

// MostRecent returns the patient's latest record across both streams, or nil
// when the patient has none. The AI record wins only when strictly newer;
// on equal timestamps the doctor consultation is returned.
func (s *Service) MostRecent(ctx context.Context, patientID uuid.UUID) (*TaggedRecord, error) {
	ai, err := s.consultations.GetLatestByPatient(ctx, patientID)
	if err != nil && !errors.Is(err, consultation.ErrNotFound) {
		return nil, err
	}
	doctor, err := s.appointments.GetLatestByPatient(ctx, patientID)
	if err != nil && !errors.Is(err, appointment.ErrNotFound) {
		return nil, err
	}

	switch {
	case ai == nil && doctor == nil:
		return nil, nil
	case doctor == nil:
		return &TaggedRecord{Type: TypeAI, AI: ai}, nil
	case ai == nil:
		return &TaggedRecord{Type: TypeDoctor, Doctor: doctor}, nil
	case ai.CreatedAt.After(doctor.CreatedAt):
		return &TaggedRecord{Type: TypeAI, AI: ai}, nil
	default:
		return &TaggedRecord{Type: TypeDoctor, Doctor: doctor}, nil
	}
}

// AllRecords flattens both streams into one list, newest first. AI rows are
// stamped with their creation time, doctor rows with the appointment time.
func (s *Service) AllRecords(ctx context.Context, patientID uuid.UUID) ([]RecordSummary, error) {
	consultations, err := s.consultations.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	appointments, err := s.appointments.ListByPatient(ctx, patientID, 0, 0)
	if err != nil {
		return nil, err
	}

	records := make([]RecordSummary, 0, len(consultations)+len(appointments))
	for _, c := range consultations {
		records = append(records, RecordSummary{
			ID:      c.ID,
			Type:    TypeAI,
			Title:   c.Diagnosis,
			Date:    c.CreatedAt.Format(dateLayout),
			Time:    c.CreatedAt.Format(timeLayout),
			Status:  c.Status,
			Summary: c.Analysis,
		})
	}
	for _, d := range appointments {
		records = append(records, RecordSummary{
			ID:         d.ID,
			Type:       TypeDoctor,
			Title:      d.Symptoms,
			Date:       d.AppointmentTime.Format(dateLayout),
			Time:       d.AppointmentTime.Format(timeLayout),
			Status:     d.Status,
			Summary:    d.Diagnosis,
			Doctor:     d.DoctorName,
			Department: d.Department,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date > records[j].Date
		}
		return records[i].Time > records[j].Time
	})
	return records, nil
}
