package consultation

import "time"

const (
	EntryTurn      = "turn"
	EntrySeparator = "separator"
)

// HistoryEntry is one element of a reconstructed chat history: either a
// question/answer turn or a separator between consultations.
type HistoryEntry struct {
	Type      string     `json:"type"`
	Question  string     `json:"question,omitempty"`
	Answer    string     `json:"answer,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// PairMessages reconstructs question/answer turns from a raw message log.
// The input must already be ordered ascending by (created_at, seq).
//
// Each user message opens a turn. If the immediately following message is an
// assistant message in the same consultation, it is consumed as the answer;
// otherwise the answer is empty. Assistant messages not consumed this way are
// dropped from the output. When the log spans multiple consultations, a
// separator entry is emitted whenever the consultation id changes relative to
// the previous raw message, but never before the first.
//
// A turn's timestamp is taken from the last message consumed for it: the
// assistant message when paired, the user message otherwise.
func PairMessages(msgs []*Message) []HistoryEntry {
	entries := []HistoryEntry{}

	for i := 0; i < len(msgs); i++ {
		m := msgs[i]
		if m.Sender != SenderUser {
			continue
		}

		if i > 0 && msgs[i-1].ConsultationID != m.ConsultationID {
			entries = append(entries, HistoryEntry{Type: EntrySeparator})
		}

		turn := HistoryEntry{Type: EntryTurn, Question: m.Content}
		last := m
		if i+1 < len(msgs) &&
			msgs[i+1].Sender == SenderAssistant &&
			msgs[i+1].ConsultationID == m.ConsultationID {
			turn.Answer = msgs[i+1].Content
			last = msgs[i+1]
			i++
		}

		ts := last.CreatedAt
		turn.CreatedAt = &ts
		entries = append(entries, turn)
	}

	return entries
}
