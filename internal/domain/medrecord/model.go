package medrecord

import (
	"time"

	"github.com/google/uuid"
)

// MedicalRecord maps to the medical_records table. Records are immutable:
// every synthesis inserts a new row, nothing updates an old one.
type MedicalRecord struct {
	ID                    uuid.UUID `db:"id" json:"id"`
	PatientID             uuid.UUID `db:"patient_id" json:"patient_id"`
	ChiefComplaint        string    `db:"chief_complaint" json:"chief_complaint"`
	HistoryPresentIllness string    `db:"history_present_illness" json:"history_present_illness"`
	PastMedicalHistory    string    `db:"past_medical_history" json:"past_medical_history"`
	PersonalHistory       string    `db:"personal_history" json:"personal_history"`
	FamilyHistory         string    `db:"family_history" json:"family_history"`
	Diagnosis             string    `db:"diagnosis" json:"diagnosis"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
}
