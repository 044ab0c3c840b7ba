package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medconsult/medconsult/internal/domain/appointment"
	"github.com/medconsult/medconsult/internal/domain/consultation"
)

type mockConsultations struct {
	items []*consultation.Consultation
}

func (m *mockConsultations) Create(_ context.Context, c *consultation.Consultation) error {
	m.items = append(m.items, c)
	return nil
}

func (m *mockConsultations) GetByID(_ context.Context, id uuid.UUID) (*consultation.Consultation, error) {
	for _, c := range m.items {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, consultation.ErrNotFound
}

func (m *mockConsultations) GetLatestByPatient(_ context.Context, patientID uuid.UUID) (*consultation.Consultation, error) {
	var latest *consultation.Consultation
	for _, c := range m.items {
		if c.PatientID != patientID {
			continue
		}
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, consultation.ErrNotFound
	}
	return latest, nil
}

func (m *mockConsultations) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*consultation.Consultation, error) {
	var out []*consultation.Consultation
	for _, c := range m.items {
		if c.PatientID == patientID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockConsultations) Update(_ context.Context, c *consultation.Consultation) error {
	return nil
}

type mockAppointments struct {
	items []*appointment.DoctorConsultation
}

func (m *mockAppointments) Create(_ context.Context, d *appointment.DoctorConsultation) error {
	m.items = append(m.items, d)
	return nil
}

func (m *mockAppointments) GetByID(_ context.Context, id uuid.UUID) (*appointment.DoctorConsultation, error) {
	for _, d := range m.items {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, appointment.ErrNotFound
}

func (m *mockAppointments) GetLatestByPatient(_ context.Context, patientID uuid.UUID) (*appointment.DoctorConsultation, error) {
	var latest *appointment.DoctorConsultation
	for _, d := range m.items {
		if d.PatientID != patientID {
			continue
		}
		if latest == nil || d.CreatedAt.After(latest.CreatedAt) {
			latest = d
		}
	}
	if latest == nil {
		return nil, appointment.ErrNotFound
	}
	return latest, nil
}

func (m *mockAppointments) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*appointment.DoctorConsultation, error) {
	var out []*appointment.DoctorConsultation
	for _, d := range m.items {
		if d.PatientID == patientID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockAppointments) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*appointment.DoctorConsultation, error) {
	return nil, nil
}

func (m *mockAppointments) Update(_ context.Context, d *appointment.DoctorConsultation) error {
	return nil
}

func newTestService() (*Service, *mockConsultations, *mockAppointments) {
	consultations := &mockConsultations{}
	appointments := &mockAppointments{}
	return NewService(consultations, appointments), consultations, appointments
}

func aiRecord(patient uuid.UUID, createdAt time.Time) *consultation.Consultation {
	return &consultation.Consultation{
		ID:        uuid.New(),
		PatientID: patient,
		Status:    consultation.StatusCompleted,
		Diagnosis: "headache",
		Analysis:  "likely tension type",
		CreatedAt: createdAt,
	}
}

func doctorRecord(patient uuid.UUID, createdAt, appointmentTime time.Time) *appointment.DoctorConsultation {
	return &appointment.DoctorConsultation{
		ID:              uuid.New(),
		PatientID:       patient,
		DoctorID:        uuid.New(),
		AppointmentTime: appointmentTime,
		Department:      "neurology",
		Symptoms:        "headache",
		Diagnosis:       "rest",
		Status:          appointment.StatusCompleted,
		CreatedAt:       createdAt,
		DoctorName:      "Dr. Chen",
	}
}

func TestMostRecent_Empty(t *testing.T) {
	svc, _, _ := newTestService()

	record, err := svc.MostRecent(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("MostRecent: %v", err)
	}
	if record != nil {
		t.Errorf("expected nil, got %+v", record)
	}
}

func TestMostRecent_OnlyAI(t *testing.T) {
	svc, consultations, _ := newTestService()
	patient := uuid.New()
	consultations.items = append(consultations.items, aiRecord(patient, time.Now()))

	record, err := svc.MostRecent(context.Background(), patient)
	if err != nil {
		t.Fatalf("MostRecent: %v", err)
	}
	if record == nil || record.Type != TypeAI || record.AI == nil || record.Doctor != nil {
		t.Errorf("unexpected record: %+v", record)
	}
}

func TestMostRecent_OnlyDoctor(t *testing.T) {
	svc, _, appointments := newTestService()
	patient := uuid.New()
	now := time.Now()
	appointments.items = append(appointments.items, doctorRecord(patient, now, now))

	record, err := svc.MostRecent(context.Background(), patient)
	if err != nil {
		t.Fatalf("MostRecent: %v", err)
	}
	if record == nil || record.Type != TypeDoctor || record.Doctor == nil || record.AI != nil {
		t.Errorf("unexpected record: %+v", record)
	}
}

func TestMostRecent_AIStrictlyNewerWins(t *testing.T) {
	svc, consultations, appointments := newTestService()
	patient := uuid.New()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	appointments.items = append(appointments.items, doctorRecord(patient, base, base))
	consultations.items = append(consultations.items, aiRecord(patient, base.Add(time.Second)))

	record, err := svc.MostRecent(context.Background(), patient)
	if err != nil {
		t.Fatalf("MostRecent: %v", err)
	}
	if record.Type != TypeAI {
		t.Errorf("type = %q, want ai", record.Type)
	}
}

func TestMostRecent_TieGoesToDoctor(t *testing.T) {
	svc, consultations, appointments := newTestService()
	patient := uuid.New()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	consultations.items = append(consultations.items, aiRecord(patient, base))
	appointments.items = append(appointments.items, doctorRecord(patient, base, base))

	record, err := svc.MostRecent(context.Background(), patient)
	if err != nil {
		t.Fatalf("MostRecent: %v", err)
	}
	if record.Type != TypeDoctor {
		t.Errorf("type = %q, want doctor on equal timestamps", record.Type)
	}
}

func TestAllRecords_SortedNewestFirst(t *testing.T) {
	svc, consultations, appointments := newTestService()
	patient := uuid.New()
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	// Same date, morning AI consultation vs afternoon doctor visit.
	consultations.items = append(consultations.items, aiRecord(patient, day.Add(9*time.Hour)))
	appointments.items = append(appointments.items,
		doctorRecord(patient, day, day.Add(14*time.Hour)))
	// An older day on top of that.
	consultations.items = append(consultations.items, aiRecord(patient, day.AddDate(0, 0, -1)))

	records, err := svc.AllRecords(context.Background(), patient)
	if err != nil {
		t.Fatalf("AllRecords: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Type != TypeDoctor || records[0].Time != "14:00" {
		t.Errorf("records[0] = %+v, want the 14:00 doctor visit", records[0])
	}
	if records[1].Type != TypeAI || records[1].Time != "09:00" {
		t.Errorf("records[1] = %+v, want the 09:00 consultation", records[1])
	}
	if records[2].Date != "2024-01-01" {
		t.Errorf("records[2].Date = %q, want the previous day last", records[2].Date)
	}
}

func TestAllRecords_ZeroPaddedStamps(t *testing.T) {
	// Single-digit hours and days must come out zero padded or the string
	// sort above would misorder them.
	svc, consultations, _ := newTestService()
	patient := uuid.New()
	consultations.items = append(consultations.items,
		aiRecord(patient, time.Date(2024, 3, 5, 8, 7, 0, 0, time.UTC)))

	records, err := svc.AllRecords(context.Background(), patient)
	if err != nil {
		t.Fatalf("AllRecords: %v", err)
	}
	if records[0].Date != "2024-03-05" {
		t.Errorf("date = %q", records[0].Date)
	}
	if records[0].Time != "08:07" {
		t.Errorf("time = %q", records[0].Time)
	}
}

func TestAllRecords_FieldMapping(t *testing.T) {
	svc, _, appointments := newTestService()
	patient := uuid.New()
	now := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
	appointments.items = append(appointments.items, doctorRecord(patient, now, now))

	records, err := svc.AllRecords(context.Background(), patient)
	if err != nil {
		t.Fatalf("AllRecords: %v", err)
	}
	r := records[0]
	if r.Title != "headache" || r.Summary != "rest" {
		t.Errorf("title/summary = %q/%q", r.Title, r.Summary)
	}
	if r.Doctor != "Dr. Chen" || r.Department != "neurology" {
		t.Errorf("doctor/department = %q/%q", r.Doctor, r.Department)
	}
}
