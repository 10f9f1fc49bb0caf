package models

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost = 12

	// MaxOTPAttempts wrong guesses discard the pending code.
	MaxOTPAttempts = 5

	mysqlDuplicateEntry = 1062
)

type UserModelInterface interface {
	Insert(name, email, password string) (int, error)
	Authenticate(email, password string) (int, error)
	Exists(id int) (bool, error)
	Get(id int) (*User, error)
	GetByEmail(email string) (*User, error)
	PasswordUpdate(id int, currentPassword, newPassword string) error
	SetVerifyOTP(id int, code string, expires time.Time) error
	VerifyEmail(id int, code string, now time.Time) error
	SetResetOTP(email, code string, expires time.Time) error
	ResetPassword(email, code, newPassword string, now time.Time) error
}

type User struct {
	ID             int
	UserID         string
	Name           string
	Email          string
	HashedPassword []byte
	Verified       bool
	Created        time.Time
	Updated        time.Time
}

// UserModel wraps a database connection pool
type UserModel struct {
	DB *sql.DB
}

// otpColumns names the hash, expiry and failed attempt columns of one kind of pending code.
type otpColumns struct {
	hash     string
	expires  string
	attempts string
}

var (
	verifyColumns = otpColumns{hash: "verify_otp_hash", expires: "verify_otp_expires", attempts: "verify_otp_attempts"}
	resetColumns  = otpColumns{hash: "reset_otp_hash", expires: "reset_otp_expires", attempts: "reset_otp_attempts"}
)

func (m *UserModel) Insert(name, email, password string) (int, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return 0, err
	}

	statement := `INSERT INTO users (user_id, name, email, hashed_password, verified, created, updated)
VALUES(?, ?, ?, ?, FALSE, UTC_TIMESTAMP(), UTC_TIMESTAMP())`

	result, err := m.DB.Exec(statement, uuid.NewString(), name, email, string(hashedPassword))
	if err != nil {
		// The unique constraint on email surfaces as MySQL error 1062.
		var mySQLError *mysql.MySQLError
		if errors.As(err, &mySQLError) {
			if mySQLError.Number == mysqlDuplicateEntry && strings.Contains(mySQLError.Message, "users_uc_email") {
				return 0, ErrDuplicateEmail
			}
		}
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	return int(id), nil
}

func (m *UserModel) Authenticate(email, password string) (int, error) {
	var id int
	var hashedPassword []byte

	query := `SELECT id, hashed_password FROM users WHERE email = ?`

	err := m.DB.QueryRow(query, email).Scan(&id, &hashedPassword)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrInvalidCredentials
		}
		return 0, err
	}

	err = bcrypt.CompareHashAndPassword(hashedPassword, []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return 0, ErrInvalidCredentials
		}
		return 0, err
	}

	return id, nil
}

func (m *UserModel) Exists(id int) (bool, error) {
	var exists bool

	query := `SELECT EXISTS(SELECT true FROM users WHERE id = ?)`

	err := m.DB.QueryRow(query, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("row scan error: %w", err)
	}
	return exists, nil
}

func (m *UserModel) Get(id int) (*User, error) {
	return m.getBy("id", id)
}

func (m *UserModel) GetByEmail(email string) (*User, error) {
	return m.getBy("email", email)
}

func (m *UserModel) getBy(column string, value any) (*User, error) {
	u := &User{}

	query := `SELECT id, user_id, name, email, verified, created, updated FROM users WHERE ` + column + ` = ?`

	err := m.DB.QueryRow(query, value).Scan(&u.ID, &u.UserID, &u.Name, &u.Email, &u.Verified, &u.Created, &u.Updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRecord
		}
		return nil, err
	}

	return u, nil
}

func (m *UserModel) PasswordUpdate(id int, currentPassword, newPassword string) error {
	var currentHashedPassword []byte

	query := `SELECT hashed_password FROM users WHERE id = ?`

	err := m.DB.QueryRow(query, id).Scan(&currentHashedPassword)
	if err != nil {
		return err
	}

	err = bcrypt.CompareHashAndPassword(currentHashedPassword, []byte(currentPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return err
	}

	newHashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), BcryptCost)
	if err != nil {
		return err
	}

	statement := `UPDATE users SET hashed_password = ?, updated = UTC_TIMESTAMP() WHERE id = ?`

	_, err = m.DB.Exec(statement, string(newHashedPassword), id)
	return err
}

// SetVerifyOTP stores a hash of the email verification code, replacing any pending one.
func (m *UserModel) SetVerifyOTP(id int, code string, expires time.Time) error {
	return m.setOTP(verifyColumns, "id", id, code, expires)
}

// SetResetOTP stores a hash of the password reset code. It returns ErrNoRecord for an unknown email.
func (m *UserModel) SetResetOTP(email, code string, expires time.Time) error {
	return m.setOTP(resetColumns, "email", email, code, expires)
}

func (m *UserModel) setOTP(cols otpColumns, column string, value any, code string, expires time.Time) error {
	hashedCode, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	if err != nil {
		return err
	}

	statement := fmt.Sprintf(`UPDATE users SET %s = ?, %s = ?, %s = 0, updated = UTC_TIMESTAMP() WHERE %s = ?`,
		cols.hash, cols.expires, cols.attempts, column)

	result, err := m.DB.Exec(statement, string(hashedCode), expires.UTC(), value)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoRecord
	}

	return nil
}

// VerifyEmail marks the account verified when code matches the pending verification code.
func (m *UserModel) VerifyEmail(id int, code string, now time.Time) error {
	tx, err := m.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := checkOTP(tx, verifyColumns, "id", id, code, now); err != nil {
		return commitMismatch(tx, err)
	}

	statement := `UPDATE users SET verified = TRUE, verify_otp_hash = NULL, verify_otp_expires = NULL,
updated = UTC_TIMESTAMP() WHERE id = ?`

	if _, err := tx.Exec(statement, id); err != nil {
		return err
	}

	return tx.Commit()
}

// ResetPassword replaces the password when code matches the pending reset code.
// An unknown email is reported as ErrInvalidOTP.
func (m *UserModel) ResetPassword(email, code, newPassword string, now time.Time) error {
	tx, err := m.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id, err := checkOTP(tx, resetColumns, "email", email, code, now)
	if err != nil {
		if errors.Is(err, ErrNoRecord) {
			return ErrInvalidOTP
		}
		return commitMismatch(tx, err)
	}

	newHashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), BcryptCost)
	if err != nil {
		return err
	}

	statement := `UPDATE users SET hashed_password = ?, reset_otp_hash = NULL, reset_otp_expires = NULL,
updated = UTC_TIMESTAMP() WHERE id = ?`

	if _, err := tx.Exec(statement, string(newHashedPassword), id); err != nil {
		return err
	}

	return tx.Commit()
}

// checkOTP locks the user row for update and compares code with the pending hash.
// A mismatch is checked before expiry. Each mismatch is counted, and the pending code is
// cleared once MaxOTPAttempts is reached.
func checkOTP(tx *sql.Tx, cols otpColumns, column string, value any, code string, now time.Time) (int, error) {
	var (
		id         int
		hashedCode sql.NullString
		expires    sql.NullTime
		attempts   int
	)

	query := fmt.Sprintf(`SELECT id, %s, %s, %s FROM users WHERE %s = ? FOR UPDATE`,
		cols.hash, cols.expires, cols.attempts, column)

	err := tx.QueryRow(query, value).Scan(&id, &hashedCode, &expires, &attempts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNoRecord
		}
		return 0, err
	}

	if !hashedCode.Valid || hashedCode.String == "" {
		return 0, ErrInvalidOTP
	}

	err = bcrypt.CompareHashAndPassword([]byte(hashedCode.String), []byte(code))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			if err := recordMismatch(tx, cols, id, attempts+1); err != nil {
				return 0, err
			}
			return 0, ErrInvalidOTP
		}
		return 0, err
	}

	if !expires.Valid || now.After(expires.Time) {
		return 0, ErrOTPExpired
	}

	return id, nil
}

func recordMismatch(tx *sql.Tx, cols otpColumns, id, attempts int) error {
	statement := fmt.Sprintf(`UPDATE users SET %s = ? WHERE id = ?`, cols.attempts)
	if attempts >= MaxOTPAttempts {
		statement = fmt.Sprintf(`UPDATE users SET %s = ?, %s = NULL, %s = NULL WHERE id = ?`,
			cols.attempts, cols.hash, cols.expires)
	}

	_, err := tx.Exec(statement, attempts, id)
	return err
}

// commitMismatch keeps the attempt count written by checkOTP before returning its error.
func commitMismatch(tx *sql.Tx, err error) error {
	if errors.Is(err, ErrInvalidOTP) {
		if cerr := tx.Commit(); cerr != nil {
			return cerr
		}
	}
	return err
}
