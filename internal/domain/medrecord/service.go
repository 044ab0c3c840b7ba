package medrecord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medconsult/medconsult/internal/domain/identity"
	"github.com/medconsult/medconsult/internal/platform/llm"
)

// ErrMissingProfile is returned when synthesis is requested for a patient
// who has not filled in their full name yet.
var ErrMissingProfile = errors.New("patient profile is missing a full name")

// Fallback texts for fields the reasoning service or the profile leave
// empty.
const (
	fallbackHistory    = "not provided by patient"
	fallbackDiagnosis  = "no diagnosis recorded"
	fallbackEncounters = "no encounters recorded"
)

type Service struct {
	repo  Repository
	users identity.UserRepository
	llm   llm.Client
}

func NewService(repo Repository, users identity.UserRepository, client llm.Client) *Service {
	return &Service{repo: repo, users: users, llm: client}
}

// Synthesize builds a new medical record for a patient from the reasoning
// service's structured output. The profile is checked first: without a full
// name no external call is made and nothing is written. The external call
// itself runs outside any transaction; only the final insert touches the
// database.
func (s *Service) Synthesize(ctx context.Context, patientID uuid.UUID) (*MedicalRecord, error) {
	user, err := s.users.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if user.FullName == nil || *user.FullName == "" {
		return nil, ErrMissingProfile
	}

	structured, err := s.llm.GenerateRecord(ctx, *user.FullName)
	if err != nil {
		return nil, err
	}

	rec := &MedicalRecord{
		PatientID:             patientID,
		ChiefComplaint:        structured.Summary,
		HistoryPresentIllness: renderEncounters(structured.Encounters),
		PastMedicalHistory:    orFallback(user.BasicMedicalHistory),
		PersonalHistory:       orFallback(user.PersonalHistory),
		FamilyHistory:         orFallback(user.FamilyHistory),
		Diagnosis:             fallbackDiagnosis,
		CreatedAt:             time.Now().UTC(),
	}
	if len(structured.Encounters) > 0 && structured.Encounters[0].Diagnosis != "" {
		rec.Diagnosis = structured.Encounters[0].Diagnosis
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) Get(ctx context.Context, patientID, id uuid.UUID) (*MedicalRecord, error) {
	return s.repo.GetByPatient(ctx, patientID, id)
}

func renderEncounters(encounters []llm.Encounter) string {
	if len(encounters) == 0 {
		return fallbackEncounters
	}
	var b strings.Builder
	for i, e := range encounters {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s: %s", e.Date, e.Diagnosis, e.Summary)
	}
	return b.String()
}

func orFallback(s *string) string {
	if s == nil || *s == "" {
		return fallbackHistory
	}
	return *s
}
