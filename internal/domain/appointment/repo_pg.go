package appointment

import (
	"context"
	"errors"
	"fmt"

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

const dcCols = `dc.id, dc.patient_id, dc.doctor_id, dc.appointment_time, dc.department,
	dc.symptoms, dc.diagnosis, dc.status, dc.is_urgent, dc.created_at, u.full_name`

const dcFrom = ` FROM doctor_consultations dc
	JOIN doctors d ON d.id = dc.doctor_id
	JOIN users u ON u.id = d.user_id`

func (r *repoPG) Create(ctx context.Context, d *DoctorConsultation) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctor_consultations (
			id, patient_id, doctor_id, appointment_time, department,
			symptoms, diagnosis, status, is_urgent, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		d.ID, d.PatientID, d.DoctorID, d.AppointmentTime, d.Department,
		d.Symptoms, d.Diagnosis, d.Status, d.IsUrgent, d.CreatedAt,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*DoctorConsultation, error) {
	return scanDC(r.conn(ctx).QueryRow(ctx,
		`SELECT `+dcCols+dcFrom+` WHERE dc.id = $1`, id))
}

func (r *repoPG) GetLatestByPatient(ctx context.Context, patientID uuid.UUID) (*DoctorConsultation, error) {
	return scanDC(r.conn(ctx).QueryRow(ctx,
		`SELECT `+dcCols+dcFrom+`
		 WHERE dc.patient_id = $1
		 ORDER BY dc.created_at DESC, dc.id DESC
		 LIMIT 1`, patientID))
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*DoctorConsultation, error) {
	return r.list(ctx, `dc.patient_id = $1`, patientID, limit, offset)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*DoctorConsultation, error) {
	return r.list(ctx, `dc.doctor_id = $1`, doctorID, limit, offset)
}

func (r *repoPG) list(ctx context.Context, where string, id uuid.UUID, limit, offset int) ([]*DoctorConsultation, error) {
	sql := `SELECT ` + dcCols + dcFrom + ` WHERE ` + where +
		` ORDER BY dc.created_at DESC, dc.id DESC`
	args := []interface{}{id}
	if limit > 0 {
		sql += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
		args = append(args, limit, offset)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*DoctorConsultation
	for rows.Next() {
		d, err := scanDC(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, d *DoctorConsultation) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctor_consultations SET
			appointment_time=$2, department=$3, symptoms=$4,
			diagnosis=$5, status=$6, is_urgent=$7
		WHERE id=$1`,
		d.ID, d.AppointmentTime, d.Department, d.Symptoms,
		d.Diagnosis, d.Status, d.IsUrgent,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDC(row pgx.Row) (*DoctorConsultation, error) {
	var d DoctorConsultation
	// users.full_name is nullable, so it is scanned through a pointer.
	var doctorName *string
	err := row.Scan(
		&d.ID, &d.PatientID, &d.DoctorID, &d.AppointmentTime, &d.Department,
		&d.Symptoms, &d.Diagnosis, &d.Status, &d.IsUrgent, &d.CreatedAt,
		&doctorName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if doctorName != nil {
		d.DoctorName = *doctorName
	}
	return &d, nil
}
