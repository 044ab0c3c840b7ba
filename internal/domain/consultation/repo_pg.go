package consultation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medconsult/medconsult/internal/platform/db"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// =========== Consultation Repository ===========

type consultationRepoPG struct{ pool *pgxpool.Pool }

func NewConsultationRepoPG(pool *pgxpool.Pool) ConsultationRepository {
	return &consultationRepoPG{pool: pool}
}

func (r *consultationRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const consultationCols = `id, patient_id, status, diagnosis, analysis, symptom_description, created_at`

func (r *consultationRepoPG) Create(ctx context.Context, c *Consultation) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO consultations (id, patient_id, status, diagnosis, analysis, symptom_description, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		c.ID, c.PatientID, c.Status, c.Diagnosis, c.Analysis, c.SymptomDescription, c.CreatedAt,
	)
	return err
}

func (r *consultationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return scanConsultation(r.conn(ctx).QueryRow(ctx,
		`SELECT `+consultationCols+` FROM consultations WHERE id = $1`, id))
}

func (r *consultationRepoPG) GetLatestByPatient(ctx context.Context, patientID uuid.UUID) (*Consultation, error) {
	return scanConsultation(r.conn(ctx).QueryRow(ctx, `
		SELECT `+consultationCols+` FROM consultations
		WHERE patient_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, patientID))
}

func (r *consultationRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Consultation, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+consultationCols+` FROM consultations
		WHERE patient_id = $1
		ORDER BY created_at ASC, id ASC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var consultations []*Consultation
	for rows.Next() {
		c := &Consultation{}
		if err := rows.Scan(&c.ID, &c.PatientID, &c.Status, &c.Diagnosis, &c.Analysis, &c.SymptomDescription, &c.CreatedAt); err != nil {
			return nil, err
		}
		consultations = append(consultations, c)
	}
	return consultations, rows.Err()
}

func (r *consultationRepoPG) Update(ctx context.Context, c *Consultation) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE consultations SET
			status=$2, diagnosis=$3, analysis=$4, symptom_description=$5
		WHERE id = $1`,
		c.ID, c.Status, c.Diagnosis, c.Analysis, c.SymptomDescription,
	)
	return err
}

func scanConsultation(row pgx.Row) (*Consultation, error) {
	c := &Consultation{}
	err := row.Scan(&c.ID, &c.PatientID, &c.Status, &c.Diagnosis, &c.Analysis, &c.SymptomDescription, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// =========== Message Repository ===========

type messageRepoPG struct{ pool *pgxpool.Pool }

func NewMessageRepoPG(pool *pgxpool.Pool) MessageRepository {
	return &messageRepoPG{pool: pool}
}

func (r *messageRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const messageCols = `id, consultation_id, sender, content, seq, created_at`

func (r *messageRepoPG) Create(ctx context.Context, m *Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO messages (id, consultation_id, sender, content, seq, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		m.ID, m.ConsultationID, m.Sender, m.Content, m.Seq, m.CreatedAt,
	)
	return err
}

func (r *messageRepoPG) MaxSeq(ctx context.Context, consultationID uuid.UUID) (int, error) {
	var max int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM messages WHERE consultation_id = $1`,
		consultationID,
	).Scan(&max)
	return max, err
}

func (r *messageRepoPG) ListByConsultation(ctx context.Context, consultationID uuid.UUID) ([]*Message, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+messageCols+` FROM messages
		WHERE consultation_id = $1
		ORDER BY created_at ASC, seq ASC`, consultationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

func (r *messageRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Message, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT m.id, m.consultation_id, m.sender, m.content, m.seq, m.created_at
		FROM messages m
		JOIN consultations c ON c.id = m.consultation_id
		WHERE c.patient_id = $1
		ORDER BY m.created_at ASC, m.seq ASC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

func collectMessages(rows pgx.Rows) ([]*Message, error) {
	var msgs []*Message
	for rows.Next() {
		m := &Message{}
		if err := rows.Scan(&m.ID, &m.ConsultationID, &m.Sender, &m.Content, &m.Seq, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
