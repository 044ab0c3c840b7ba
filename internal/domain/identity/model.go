package identity

import (
	"time"

	"github.com/google/uuid"
)

const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// User maps to the users table. A user is either a patient or a doctor;
// doctors additionally have a Doctor profile row.
type User struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	Username            string     `db:"username" json:"username"`
	PasswordHash        string     `db:"password_hash" json:"-"`
	Role                string     `db:"role" json:"role"`
	FullName            *string    `db:"full_name" json:"full_name,omitempty"`
	Gender              *string    `db:"gender" json:"gender,omitempty"`
	BirthDate           *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Phone               *string    `db:"phone" json:"phone,omitempty"`
	Email               *string    `db:"email" json:"email,omitempty"`
	IDCard              *string    `db:"id_card" json:"id_card,omitempty"`
	InsuranceCard       *string    `db:"insurance_card" json:"insurance_card,omitempty"`
	BasicMedicalHistory *string    `db:"basic_medical_history" json:"basic_medical_history,omitempty"`
	PersonalHistory     *string    `db:"personal_history" json:"personal_history,omitempty"`
	FamilyHistory       *string    `db:"family_history" json:"family_history,omitempty"`
	AvatarURL           *string    `db:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
}

// Doctor maps to the doctors table, one row per doctor user.
type Doctor struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	FullName    *string   `db:"full_name" json:"full_name,omitempty"`
	Title       *string   `db:"title" json:"title,omitempty"`
	Specialty   *string   `db:"specialty" json:"specialty,omitempty"`
	Bio         *string   `db:"bio" json:"bio,omitempty"`
	Rating      *float64  `db:"rating" json:"rating,omitempty"`
	ReviewCount int       `db:"review_count" json:"review_count"`
}

// Department maps to the departments table.
type Department struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
}
