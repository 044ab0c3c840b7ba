package medrecord

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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const recordCols = `id, patient_id, chief_complaint, history_present_illness,
	past_medical_history, personal_history, family_history, diagnosis, created_at`

func (r *repoPG) Create(ctx context.Context, rec *MedicalRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_records (
			id, patient_id, chief_complaint, history_present_illness,
			past_medical_history, personal_history, family_history, diagnosis, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		rec.ID, rec.PatientID, rec.ChiefComplaint, rec.HistoryPresentIllness,
		rec.PastMedicalHistory, rec.PersonalHistory, rec.FamilyHistory, rec.Diagnosis,
		rec.CreatedAt,
	)
	return err
}

func (r *repoPG) GetByPatient(ctx context.Context, patientID, id uuid.UUID) (*MedicalRecord, error) {
	rec := &MedicalRecord{}
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+recordCols+` FROM medical_records WHERE id = $1 AND patient_id = $2`,
		id, patientID,
	).Scan(
		&rec.ID, &rec.PatientID, &rec.ChiefComplaint, &rec.HistoryPresentIllness,
		&rec.PastMedicalHistory, &rec.PersonalHistory, &rec.FamilyHistory, &rec.Diagnosis,
		&rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+recordCols+` FROM medical_records
		 WHERE patient_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		patientID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*MedicalRecord
	for rows.Next() {
		rec := &MedicalRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.PatientID, &rec.ChiefComplaint, &rec.HistoryPresentIllness,
			&rec.PastMedicalHistory, &rec.PersonalHistory, &rec.FamilyHistory, &rec.Diagnosis,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
