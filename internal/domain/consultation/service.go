package consultation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medconsult/medconsult/internal/platform/db"
	"github.com/medconsult/medconsult/internal/platform/llm"
)

// The welcome exchange seeds a patient's first consultation so the chat view
// never opens empty.
const (
	welcomeQuestion = "Hello"
	welcomeAnswer   = "Hello, I am your AI medical assistant. Please describe your symptoms and I will do my best to help."
)

// Placeholder snapshot values for a consultation created by an explicit
// new-session request, before any turn has been appended.
const (
	placeholderDiagnosis = "pending"
	placeholderAnalysis  = "pending"
)

type Service struct {
	consultations ConsultationRepository
	messages      MessageRepository
	llm           llm.Client
	tx            db.TxRunner
}

func NewService(consultations ConsultationRepository, messages MessageRepository, client llm.Client, tx db.TxRunner) *Service {
	return &Service{consultations: consultations, messages: messages, llm: client, tx: tx}
}

// ResolveActive returns the patient's active consultation: the most recently
// created one. A patient with no consultations gets a fresh one seeded with
// the welcome exchange; calling again then returns that same consultation.
//
// There is no persisted "active" pointer. Creating a newer consultation (see
// StartNew) silently retargets every later resolve.
func (s *Service) ResolveActive(ctx context.Context, patientID uuid.UUID) (*Consultation, error) {
	c, err := s.consultations.GetLatestByPatient(ctx, patientID)
	if err == nil {
		return c, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	now := time.Now().UTC()
	c = &Consultation{
		PatientID: patientID,
		Status:    StatusInProgress,
		CreatedAt: now,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.consultations.Create(ctx, c); err != nil {
			return err
		}
		userMsg := &Message{
			ConsultationID: c.ID,
			Sender:         SenderUser,
			Content:        welcomeQuestion,
			Seq:            1,
			CreatedAt:      now,
		}
		if err := s.messages.Create(ctx, userMsg); err != nil {
			return err
		}
		assistantMsg := &Message{
			ConsultationID: c.ID,
			Sender:         SenderAssistant,
			Content:        welcomeAnswer,
			Seq:            2,
			CreatedAt:      now,
		}
		return s.messages.Create(ctx, assistantMsg)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// StartNew unconditionally creates an empty consultation. Being newest, it
// becomes the active session for all subsequent resolves.
func (s *Service) StartNew(ctx context.Context, patientID uuid.UUID) (*Consultation, error) {
	c := &Consultation{
		PatientID: patientID,
		Status:    StatusProcessing,
		Diagnosis: placeholderDiagnosis,
		Analysis:  placeholderAnalysis,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.consultations.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// AppendTurn records one question/answer exchange on a consultation the
// patient owns. The two message rows and the snapshot mutation commit as one
// transaction; any failure leaves nothing behind.
func (s *Service) AppendTurn(ctx context.Context, patientID, consultationID uuid.UUID, question, answer string) (*Consultation, error) {
	var result *Consultation

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.consultations.GetByID(ctx, consultationID)
		if err != nil {
			return err
		}
		if c.PatientID != patientID {
			// Indistinguishable from a missing consultation on purpose.
			return ErrNotFound
		}

		maxSeq, err := s.messages.MaxSeq(ctx, c.ID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		userMsg := &Message{
			ConsultationID: c.ID,
			Sender:         SenderUser,
			Content:        question,
			Seq:            maxSeq + 1,
			CreatedAt:      now,
		}
		if err := s.messages.Create(ctx, userMsg); err != nil {
			return err
		}
		assistantMsg := &Message{
			ConsultationID: c.ID,
			Sender:         SenderAssistant,
			Content:        answer,
			Seq:            maxSeq + 2,
			CreatedAt:      now,
		}
		if err := s.messages.Create(ctx, assistantMsg); err != nil {
			return err
		}

		updated := applyTurn(*c, question, answer)
		if err := s.consultations.Update(ctx, &updated); err != nil {
			return err
		}
		result = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Ask runs one chat turn: answer the question via the reasoning service,
// then append the exchange. The external call happens before, and outside
// of, the write transaction; if it fails nothing is written.
func (s *Service) Ask(ctx context.Context, patientID, consultationID uuid.UUID, question string) (string, *Consultation, error) {
	c, err := s.consultations.GetByID(ctx, consultationID)
	if err != nil {
		return "", nil, err
	}
	if c.PatientID != patientID {
		return "", nil, ErrNotFound
	}

	answer, err := s.llm.Answer(ctx, question)
	if err != nil {
		return "", nil, err
	}

	updated, err := s.AppendTurn(ctx, patientID, consultationID, question, answer)
	if err != nil {
		return "", nil, err
	}
	return answer, updated, nil
}

// PairedHistory reconstructs the question/answer history for one
// consultation, or, when consultationID is nil, for all of the patient's
// consultations with separator entries between them.
func (s *Service) PairedHistory(ctx context.Context, patientID uuid.UUID, consultationID *uuid.UUID) ([]HistoryEntry, error) {
	var msgs []*Message
	var err error

	if consultationID != nil {
		c, err := s.consultations.GetByID(ctx, *consultationID)
		if err != nil {
			return nil, err
		}
		if c.PatientID != patientID {
			return nil, ErrNotFound
		}
		msgs, err = s.messages.ListByConsultation(ctx, c.ID)
		if err != nil {
			return nil, err
		}
	} else {
		msgs, err = s.messages.ListByPatient(ctx, patientID)
		if err != nil {
			return nil, err
		}
	}

	return PairMessages(msgs), nil
}
