package mocks

import (
	"time"

	"github.com/mabego/authify/internal/models"
)

const (
	// ValidOTP is accepted by VerifyEmail and ResetPassword.
	ValidOTP = "123456"
	// ExpiredOTP is reported as expired.
	ExpiredOTP = "999999"

	// DeletedEmail authenticates as DeletedUserID, an account that no longer exists.
	DeletedEmail  = "deleted@example.com"
	DeletedUserID = 99
)

type UserModel struct{}

// newMockUser creates an instance of the User struct with mock data.
func newMockUser(id int) *models.User {
	switch id {
	case 1:
		return &models.User{
			ID:      1,
			UserID:  "5b1f6c1e-8a7b-4a5e-9d3e-2f7e0b6c1a11",
			Name:    "Alice",
			Email:   "alice@example.com",
			Created: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
		}
	case 2:
		return &models.User{
			ID:       2,
			UserID:   "0c6b8a2d-3f4e-4b1a-8c9d-7e6f5a4b3c22",
			Name:     "Victor",
			Email:    "verified@example.com",
			Verified: true,
			Created:  time.Date(2026, 1, 3, 10, 0, 0, 0, time.UTC),
		}
	case 3:
		return &models.User{
			ID:      3,
			UserID:  "9a8b7c6d-5e4f-4a3b-2c1d-0e9f8a7b6c33",
			Name:    "Bob",
			Email:   "bob@example.com",
			Created: time.Date(2026, 1, 4, 10, 0, 0, 0, time.UTC),
		}
	default:
		return nil
	}
}

func (m *UserModel) Insert(name, email, password string) (int, error) {
	switch email {
	case "dupe@example.com":
		return 0, models.ErrDuplicateEmail
	default:
		return 3, nil
	}
}

func (m *UserModel) Authenticate(email, password string) (int, error) {
	if password != "pa$$word" {
		return 0, models.ErrInvalidCredentials
	}

	switch email {
	case "alice@example.com":
		return 1, nil
	case "verified@example.com":
		return 2, nil
	case DeletedEmail:
		return DeletedUserID, nil
	default:
		return 0, models.ErrInvalidCredentials
	}
}

func (m *UserModel) Exists(id int) (bool, error) {
	return newMockUser(id) != nil, nil
}

func (m *UserModel) Get(id int) (*models.User, error) {
	if u := newMockUser(id); u != nil {
		return u, nil
	}
	return nil, models.ErrNoRecord
}

func (m *UserModel) GetByEmail(email string) (*models.User, error) {
	for id := 1; id <= 3; id++ {
		if u := newMockUser(id); u.Email == email {
			return u, nil
		}
	}
	return nil, models.ErrNoRecord
}

func (m *UserModel) PasswordUpdate(id int, currentPassword, newPassword string) error {
	if currentPassword != "pa$$word" {
		return models.ErrInvalidCredentials
	}
	return nil
}

func (m *UserModel) SetVerifyOTP(id int, code string, expires time.Time) error {
	if newMockUser(id) == nil {
		return models.ErrNoRecord
	}
	return nil
}

func (m *UserModel) VerifyEmail(id int, code string, now time.Time) error {
	return checkOTP(code)
}

func (m *UserModel) SetResetOTP(email, code string, expires time.Time) error {
	_, err := m.GetByEmail(email)
	return err
}

func (m *UserModel) ResetPassword(email, code, newPassword string, now time.Time) error {
	if _, err := m.GetByEmail(email); err != nil {
		return models.ErrInvalidOTP
	}
	return checkOTP(code)
}

func checkOTP(code string) error {
	switch code {
	case ValidOTP:
		return nil
	case ExpiredOTP:
		return models.ErrOTPExpired
	default:
		return models.ErrInvalidOTP
	}
}
