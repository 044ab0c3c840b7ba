package consultation

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusInProgress = "in_progress"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
)

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// diagnosisLabelLimit bounds the short diagnosis label derived from the
// latest question.
const diagnosisLabelLimit = 50

// Consultation maps to the consultations table: one container of AI chat
// turns for a patient, plus a derived summary snapshot that is rewritten on
// every appended turn.
type Consultation struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	PatientID          uuid.UUID `db:"patient_id" json:"patient_id"`
	Status             string    `db:"status" json:"status"`
	Diagnosis          string    `db:"diagnosis" json:"diagnosis"`
	Analysis           string    `db:"analysis" json:"analysis"`
	SymptomDescription string    `db:"symptom_description" json:"symptom_description"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// Message maps to the messages table: one utterance inside a consultation.
// Seq is a per-consultation monotonic counter assigned at creation so that
// pairing stays deterministic even when timestamps collide.
type Message struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ConsultationID uuid.UUID `db:"consultation_id" json:"consultation_id"`
	Sender         string    `db:"sender" json:"sender"`
	Content        string    `db:"content" json:"content"`
	Seq            int       `db:"seq" json:"seq"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// applyTurn rewrites the consultation snapshot for a new question/answer
// exchange. All fields are overwritten except the symptom description, which
// is append-only: every question ever asked stays in it, newline-delimited.
func applyTurn(c Consultation, question, answer string) Consultation {
	c.Analysis = answer
	c.Diagnosis = truncateLabel(question, diagnosisLabelLimit)
	if c.SymptomDescription == "" {
		c.SymptomDescription = question
	} else {
		c.SymptomDescription = c.SymptomDescription + "\n" + question
	}
	c.Status = StatusCompleted
	return c
}

// truncateLabel cuts s to at most limit runes.
func truncateLabel(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
