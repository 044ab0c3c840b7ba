package identity

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already registered")
	// ErrInvalidCredentials is returned on a failed login or wrong old
	// password; it hides which part was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateField is returned when a profile update collides with
	// another user's phone, email, or id card.
	ErrDuplicateField = errors.New("field already in use")
	// ErrWeakPassword is returned when a password fails the policy.
	ErrWeakPassword = errors.New("password must be at least 8 characters and contain letters and digits")
)

type Service struct {
	users       UserRepository
	doctors     DoctorRepository
	departments DepartmentRepository
}

func NewService(users UserRepository, doctors DoctorRepository, departments DepartmentRepository) *Service {
	return &Service{users: users, doctors: doctors, departments: departments}
}

// -- Registration & login --

func (s *Service) Register(ctx context.Context, username, password, role string) (*User, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if role != RolePatient && role != RoleDoctor {
		return nil, fmt.Errorf("role must be %q or %q", RolePatient, RoleDoctor)
	}
	if err := checkPasswordPolicy(password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// -- Profile --

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfileInput carries the editable profile fields. Nil fields are left
// unchanged.
type UpdateProfileInput struct {
	FullName            *string
	Gender              *string
	BirthDate           *time.Time
	Phone               *string
	Email               *string
	IDCard              *string
	InsuranceCard       *string
	BasicMedicalHistory *string
	PersonalHistory     *string
	FamilyHistory       *string
	AvatarURL           *string
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Uniqueness checks on identity-bearing fields before anything changes.
	if err := s.checkUnique(ctx, userID, "phone", in.Phone, s.users.GetByPhone); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, userID, "email", in.Email, s.users.GetByEmail); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, userID, "id card", in.IDCard, s.users.GetByIDCard); err != nil {
		return nil, err
	}

	if in.FullName != nil {
		u.FullName = in.FullName
	}
	if in.Gender != nil {
		u.Gender = in.Gender
	}
	if in.BirthDate != nil {
		u.BirthDate = in.BirthDate
	}
	if in.Phone != nil {
		u.Phone = in.Phone
	}
	if in.Email != nil {
		u.Email = in.Email
	}
	if in.IDCard != nil {
		u.IDCard = in.IDCard
	}
	if in.InsuranceCard != nil {
		u.InsuranceCard = in.InsuranceCard
	}
	if in.BasicMedicalHistory != nil {
		u.BasicMedicalHistory = in.BasicMedicalHistory
	}
	if in.PersonalHistory != nil {
		u.PersonalHistory = in.PersonalHistory
	}
	if in.FamilyHistory != nil {
		u.FamilyHistory = in.FamilyHistory
	}
	if in.AvatarURL != nil {
		u.AvatarURL = in.AvatarURL
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) checkUnique(ctx context.Context, userID uuid.UUID, field string, value *string, lookup func(context.Context, string) (*User, error)) error {
	if value == nil || *value == "" {
		return nil
	}
	other, err := lookup(ctx, *value)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if other.ID != userID {
		return fmt.Errorf("%w: %s", ErrDuplicateField, field)
	}
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)) != nil {
		return ErrInvalidCredentials
	}
	if err := checkPasswordPolicy(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	return s.users.Update(ctx, u)
}

// checkPasswordPolicy enforces the minimum password rules: at least 8
// characters with at least one letter and one digit.
func checkPasswordPolicy(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}

// -- Doctors & departments --

func (s *Service) ListDoctors(ctx context.Context, departmentID *uuid.UUID, limit, offset int) ([]*Doctor, int, error) {
	specialty := ""
	if departmentID != nil {
		dept, err := s.departments.GetByID(ctx, *departmentID)
		if errors.Is(err, ErrNotFound) {
			// An unknown department filters to an empty list rather
			// than failing the request.
			return nil, 0, nil
		}
		if err != nil {
			return nil, 0, err
		}
		specialty = dept.Name
	}
	return s.doctors.List(ctx, specialty, limit, offset)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) ListDepartments(ctx context.Context) ([]*Department, error) {
	return s.departments.List(ctx)
}
