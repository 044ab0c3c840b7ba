package appointment

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCanceled  = "canceled"
)

// Booking slots map to fixed hours: a morning appointment starts at 09:00,
// an afternoon one at 14:00.
const (
	SlotMorning   = "morning"
	SlotAfternoon = "afternoon"

	morningHour   = 9
	afternoonHour = 14
)

// DoctorConsultation maps to the doctor_consultations table: a booked visit
// with a doctor, carrying its outcome once the doctor records one.
type DoctorConsultation struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	AppointmentTime time.Time `db:"appointment_time" json:"appointment_time"`
	Department      string    `db:"department" json:"department"`
	Symptoms        string    `db:"symptoms" json:"symptoms"`
	Diagnosis       string    `db:"diagnosis" json:"diagnosis"`
	Status          string    `db:"status" json:"status"`
	IsUrgent        bool      `db:"is_urgent" json:"is_urgent"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`

	// DoctorName is populated from the doctors/users join on reads.
	DoctorName string `db:"-" json:"doctor_name,omitempty"`
}

// Slot reports the booking slot the appointment time falls in.
func (d *DoctorConsultation) Slot() string {
	if d.AppointmentTime.Hour() < 12 {
		return SlotMorning
	}
	return SlotAfternoon
}
