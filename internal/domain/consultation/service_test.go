package consultation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/medconsult/medconsult/internal/platform/llm"
)

type mockConsultationRepo struct {
	byID map[uuid.UUID]*Consultation
	seq  int
}

func newMockConsultationRepo() *mockConsultationRepo {
	return &mockConsultationRepo{byID: make(map[uuid.UUID]*Consultation)}
}

func (m *mockConsultationRepo) Create(ctx context.Context, c *Consultation) error {
	c.ID = uuid.New()
	m.seq++
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *mockConsultationRepo) GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockConsultationRepo) GetLatestByPatient(ctx context.Context, patientID uuid.UUID) (*Consultation, error) {
	var latest *Consultation
	for _, c := range m.byID {
		if c.PatientID != patientID {
			continue
		}
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *mockConsultationRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Consultation, error) {
	var out []*Consultation
	for _, c := range m.byID {
		if c.PatientID == patientID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockConsultationRepo) Update(ctx context.Context, c *Consultation) error {
	if _, ok := m.byID[c.ID]; !ok {
		return ErrNotFound
	}
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

type mockMessageRepo struct {
	msgs    []*Message
	failAt  int // fail the Nth Create (1-based), 0 disables
	creates int
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{}
}

func (m *mockMessageRepo) Create(ctx context.Context, msg *Message) error {
	m.creates++
	if m.failAt != 0 && m.creates == m.failAt {
		return errors.New("write failed")
	}
	msg.ID = uuid.New()
	cp := *msg
	m.msgs = append(m.msgs, &cp)
	return nil
}

func (m *mockMessageRepo) MaxSeq(ctx context.Context, consultationID uuid.UUID) (int, error) {
	max := 0
	for _, msg := range m.msgs {
		if msg.ConsultationID == consultationID && msg.Seq > max {
			max = msg.Seq
		}
	}
	return max, nil
}

func (m *mockMessageRepo) ListByConsultation(ctx context.Context, consultationID uuid.UUID) ([]*Message, error) {
	var out []*Message
	for _, msg := range m.msgs {
		if msg.ConsultationID == consultationID {
			out = append(out, msg)
		}
	}
	sortMessages(out)
	return out, nil
}

func (m *mockMessageRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Message, error) {
	return nil, errors.New("not used")
}

func sortMessages(msgs []*Message) {
	sort.Slice(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
		}
		return msgs[i].Seq < msgs[j].Seq
	})
}

// passthroughTx runs the function directly; mock repos have no transactions
// to roll back, so failure tests assert on write counts instead.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type mockLLM struct {
	answer string
	err    error
	calls  int
}

func (m *mockLLM) Answer(ctx context.Context, question string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *mockLLM) GenerateRecord(ctx context.Context, patientName string) (*llm.StructuredRecord, error) {
	return nil, errors.New("not used")
}

func newTestService() (*Service, *mockConsultationRepo, *mockMessageRepo, *mockLLM) {
	consultations := newMockConsultationRepo()
	messages := newMockMessageRepo()
	client := &mockLLM{answer: "rest and fluids"}
	svc := NewService(consultations, messages, client, passthroughTx{})
	return svc, consultations, messages, client
}

func TestResolveActive_SeedsWelcomeExchange(t *testing.T) {
	svc, _, messages, _ := newTestService()
	patient := uuid.New()

	c, err := svc.ResolveActive(context.Background(), patient)
	if err != nil {
		t.Fatalf("ResolveActive: %v", err)
	}
	if c.Status != StatusInProgress {
		t.Errorf("status = %q, want %q", c.Status, StatusInProgress)
	}
	if len(messages.msgs) != 2 {
		t.Fatalf("expected 2 seed messages, got %d", len(messages.msgs))
	}
	if messages.msgs[0].Sender != SenderUser || messages.msgs[0].Seq != 1 {
		t.Errorf("first seed message: sender %q seq %d", messages.msgs[0].Sender, messages.msgs[0].Seq)
	}
	if messages.msgs[1].Sender != SenderAssistant || messages.msgs[1].Seq != 2 {
		t.Errorf("second seed message: sender %q seq %d", messages.msgs[1].Sender, messages.msgs[1].Seq)
	}
}

func TestResolveActive_Idempotent(t *testing.T) {
	svc, consultations, messages, _ := newTestService()
	patient := uuid.New()

	first, err := svc.ResolveActive(context.Background(), patient)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := svc.ResolveActive(context.Background(), patient)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("second resolve created a new consultation: %s vs %s", first.ID, second.ID)
	}
	if len(consultations.byID) != 1 {
		t.Errorf("expected 1 consultation, got %d", len(consultations.byID))
	}
	if len(messages.msgs) != 2 {
		t.Errorf("expected welcome exchange seeded once, got %d messages", len(messages.msgs))
	}
}

func TestStartNew_RetargetsActive(t *testing.T) {
	svc, _, _, _ := newTestService()
	patient := uuid.New()

	old, err := svc.ResolveActive(context.Background(), patient)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	fresh, err := svc.StartNew(context.Background(), patient)
	if err != nil {
		t.Fatalf("StartNew: %v", err)
	}
	if fresh.Status != StatusProcessing {
		t.Errorf("status = %q, want %q", fresh.Status, StatusProcessing)
	}
	if fresh.Diagnosis != placeholderDiagnosis || fresh.Analysis != placeholderAnalysis {
		t.Errorf("placeholders not set: %q / %q", fresh.Diagnosis, fresh.Analysis)
	}

	active, err := svc.ResolveActive(context.Background(), patient)
	if err != nil {
		t.Fatalf("resolve after StartNew: %v", err)
	}
	if active.ID != fresh.ID {
		t.Errorf("active = %s, want the new consultation %s", active.ID, fresh.ID)
	}
	if active.ID == old.ID {
		t.Error("resolve still returns the old consultation")
	}
}

func TestAppendTurn_MutatesSnapshot(t *testing.T) {
	svc, consultations, messages, _ := newTestService()
	patient := uuid.New()

	c, err := svc.ResolveActive(context.Background(), patient)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	updated, err := svc.AppendTurn(context.Background(), patient, c.ID, "persistent headache", "stay hydrated")
	if err != nil {
		t.Fatalf("AppendTurn: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Errorf("status = %q, want %q", updated.Status, StatusCompleted)
	}
	if updated.Analysis != "stay hydrated" {
		t.Errorf("analysis = %q", updated.Analysis)
	}
	if updated.Diagnosis != "persistent headache" {
		t.Errorf("diagnosis = %q", updated.Diagnosis)
	}
	if updated.SymptomDescription != "persistent headache" {
		t.Errorf("symptom description = %q", updated.SymptomDescription)
	}

	stored, err := consultations.GetByID(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Analysis != updated.Analysis {
		t.Error("snapshot not persisted")
	}

	// Welcome exchange occupies seq 1 and 2; the turn continues from there.
	if len(messages.msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(messages.msgs))
	}
	if messages.msgs[2].Seq != 3 || messages.msgs[3].Seq != 4 {
		t.Errorf("turn seqs = %d, %d; want 3, 4", messages.msgs[2].Seq, messages.msgs[3].Seq)
	}
}

func TestAppendTurn_SymptomDescriptionAppendOnly(t *testing.T) {
	svc, _, _, _ := newTestService()
	patient := uuid.New()

	c, err := svc.StartNew(context.Background(), patient)
	if err != nil {
		t.Fatalf("StartNew: %v", err)
	}

	questions := []string{"fever since monday", "now a dry cough", "mild chest pain"}
	var last *Consultation
	for _, q := range questions {
		last, err = svc.AppendTurn(context.Background(), patient, c.ID, q, "noted")
		if err != nil {
			t.Fatalf("AppendTurn(%q): %v", q, err)
		}
	}

	want := strings.Join(questions, "\n")
	if last.SymptomDescription != want {
		t.Errorf("symptom description = %q, want %q", last.SymptomDescription, want)
	}
}

func TestAppendTurn_DiagnosisTruncated(t *testing.T) {
	svc, _, _, _ := newTestService()
	patient := uuid.New()

	c, err := svc.StartNew(context.Background(), patient)
	if err != nil {
		t.Fatalf("StartNew: %v", err)
	}

	long := strings.Repeat("疼", 60)
	updated, err := svc.AppendTurn(context.Background(), patient, c.ID, long, "noted")
	if err != nil {
		t.Fatalf("AppendTurn: %v", err)
	}
	if got := len([]rune(updated.Diagnosis)); got != diagnosisLabelLimit {
		t.Errorf("diagnosis label is %d runes, want %d", got, diagnosisLabelLimit)
	}
	if !strings.HasPrefix(long, updated.Diagnosis) {
		t.Error("diagnosis label is not a prefix of the question")
	}
}

func TestAppendTurn_NotOwned(t *testing.T) {
	svc, _, messages, _ := newTestService()
	owner := uuid.New()
	intruder := uuid.New()

	c, err := svc.StartNew(context.Background(), owner)
	if err != nil {
		t.Fatalf("StartNew: %v", err)
	}

	_, err = svc.AppendTurn(context.Background(), intruder, c.ID, "q", "a")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(messages.msgs) != 0 {
		t.Errorf("expected no writes, got %d messages", len(messages.msgs))
	}
}

func TestAppendTurn_Missing(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.AppendTurn(context.Background(), uuid.New(), uuid.New(), "q", "a")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAsk_AnswersAndPersists(t *testing.T) {
	svc, _, messages, client := newTestService()
	patient := uuid.New()

	c, err := svc.StartNew(context.Background(), patient)
	if err != nil {
		t.Fatalf("StartNew: %v", err)
	}

	answer, updated, err := svc.Ask(context.Background(), patient, c.ID, "sore throat")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer != "rest and fluids" {
		t.Errorf("answer = %q", answer)
	}
	if client.calls != 1 {
		t.Errorf("llm called %d times, want 1", client.calls)
	}
	if updated.Analysis != "rest and fluids" {
		t.Errorf("analysis = %q", updated.Analysis)
	}
	if len(messages.msgs) != 2 {
		t.Errorf("expected 2 messages, got %d", len(messages.msgs))
	}
}

func TestAsk_LLMFailureWritesNothing(t *testing.T) {
	svc, consultations, messages, client := newTestService()
	client.err = llm.ErrUnavailable
	patient := uuid.New()

	c, err := svc.StartNew(context.Background(), patient)
	if err != nil {
		t.Fatalf("StartNew: %v", err)
	}
	before := *consultations.byID[c.ID]

	_, _, err = svc.Ask(context.Background(), patient, c.ID, "sore throat")
	if !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if len(messages.msgs) != 0 {
		t.Errorf("expected no messages, got %d", len(messages.msgs))
	}
	after := *consultations.byID[c.ID]
	if before != after {
		t.Error("consultation snapshot changed on a failed ask")
	}
}

func TestAsk_NotOwnedSkipsLLM(t *testing.T) {
	svc, _, _, client := newTestService()
	owner := uuid.New()

	c, err := svc.StartNew(context.Background(), owner)
	if err != nil {
		t.Fatalf("StartNew: %v", err)
	}

	_, _, err = svc.Ask(context.Background(), uuid.New(), c.ID, "q")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if client.calls != 0 {
		t.Errorf("llm called %d times for a foreign consultation", client.calls)
	}
}

func TestPairedHistory_SingleConsultation(t *testing.T) {
	svc, _, _, _ := newTestService()
	patient := uuid.New()

	c, err := svc.ResolveActive(context.Background(), patient)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for i := 0; i < 3; i++ {
		q := fmt.Sprintf("q%d", i)
		if _, err := svc.AppendTurn(context.Background(), patient, c.ID, q, "a"+q); err != nil {
			t.Fatalf("AppendTurn: %v", err)
		}
	}

	entries, err := svc.PairedHistory(context.Background(), patient, &c.ID)
	if err != nil {
		t.Fatalf("PairedHistory: %v", err)
	}
	// Welcome exchange plus three turns, no separators inside one consultation.
	if len(entries) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Type != EntryTurn {
			t.Errorf("unexpected entry type %q", e.Type)
		}
	}
	if entries[0].Question != welcomeQuestion || entries[0].Answer != welcomeAnswer {
		t.Errorf("first turn is not the welcome exchange: %q / %q", entries[0].Question, entries[0].Answer)
	}
	if entries[3].Question != "q2" || entries[3].Answer != "aq2" {
		t.Errorf("last turn = %q / %q", entries[3].Question, entries[3].Answer)
	}
}

func TestPairedHistory_NotOwned(t *testing.T) {
	svc, _, _, _ := newTestService()
	owner := uuid.New()

	c, err := svc.StartNew(context.Background(), owner)
	if err != nil {
		t.Fatalf("StartNew: %v", err)
	}

	_, err = svc.PairedHistory(context.Background(), uuid.New(), &c.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
