package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mabego/authify/internal/models"
)

type userResponse struct {
	UserID            string `json:"userId"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	IsAccountVerified bool   `json:"isAccountVerified"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		UserID:            u.UserID,
		Name:              u.Name,
		Email:             u.Email,
		IsAccountVerified: u.Verified,
	}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"min=6,maxbytes=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type verifyOTPRequest struct {
	OTP string `json:"otp"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,maxbytes=72"`
}

func (app *application) apiRegister(w http.ResponseWriter, r *http.Request) {
	var input registerRequest

	if err := app.readJSON(w, r, &input); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)

	if err := app.apiValidator.Struct(input); err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	id, err := app.users.Insert(input.Name, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			recordAuthEvent(eventSignup, outcomeFailure)
			app.errorResponse(w, r, http.StatusConflict, "Email already exists")
		} else {
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	user, err := app.users.Get(id)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	recordAuthEvent(eventSignup, outcomeSuccess)
	app.sendWelcome(r.Context(), user.Email, user.Name)

	if err := app.writeJSON(w, http.StatusCreated, newUserResponse(user)); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) apiLogin(w http.ResponseWriter, r *http.Request) {
	var input loginRequest

	if err := app.readJSON(w, r, &input); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	input.Email = strings.TrimSpace(input.Email)

	if err := app.apiValidator.Struct(input); err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	id, err := app.users.Authenticate(input.Email, input.Password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			recordAuthEvent(eventLogin, outcomeFailure)
			app.errorResponse(w, r, http.StatusBadRequest, "Invalid email or password")
		} else {
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	tok, err := app.tokens.Generate(id, input.Email)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	recordAuthEvent(eventLogin, outcomeSuccess)
	app.setTokenCookie(w, tok, int(app.tokens.TTL().Seconds()))

	if err := app.writeJSON(w, http.StatusOK, envelope{"email": input.Email, "token": tok}); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) apiIsAuthenticated(w http.ResponseWriter, r *http.Request) {
	if err := app.writeJSON(w, http.StatusOK, app.tokenUserID(r) != 0); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) apiUser(w http.ResponseWriter, r *http.Request) {
	user, err := app.users.Get(app.tokenUserID(r))
	if err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			app.errorResponse(w, r, http.StatusNotFound, "User not found")
		} else {
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if err := app.writeJSON(w, http.StatusOK, newUserResponse(user)); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) apiSendOTP(w http.ResponseWriter, r *http.Request) {
	user, err := app.users.Get(app.tokenUserID(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	message := "Account already verified"

	if !user.Verified {
		if err := app.issueVerifyOTP(r.Context(), user); err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
		message = "OTP sent to " + user.Email
	}

	if err := app.writeJSON(w, http.StatusOK, envelope{"message": message}); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) apiVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var input verifyOTPRequest

	if err := app.readJSON(w, r, &input); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if strings.TrimSpace(input.OTP) == "" {
		app.errorResponse(w, r, http.StatusBadRequest, "OTP is required")
		return
	}

	err := app.users.VerifyEmail(app.tokenUserID(r), strings.TrimSpace(input.OTP), time.Now())
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidOTP):
			recordAuthEvent(eventVerifyEmail, outcomeFailure)
			app.errorResponse(w, r, http.StatusBadRequest, "Invalid OTP")
		case errors.Is(err, models.ErrOTPExpired):
			recordAuthEvent(eventVerifyEmail, outcomeFailure)
			app.errorResponse(w, r, http.StatusBadRequest, "OTP has expired")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	recordAuthEvent(eventVerifyEmail, outcomeSuccess)

	if err := app.writeJSON(w, http.StatusOK, envelope{"message": "Email verified"}); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// apiResetOTP takes the email as a query parameter and answers 200 whether or not the account exists.
func (app *application) apiResetOTP(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))

	if err := app.apiValidator.Var(email, "required,email"); err != nil {
		app.errorResponse(w, r, http.StatusBadRequest, "A valid email is required")
		return
	}

	if err := app.issueResetOTP(r.Context(), email); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, envelope{"message": "If the account exists, a reset OTP has been sent"}); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) apiResetPassword(w http.ResponseWriter, r *http.Request) {
	var input resetPasswordRequest

	if err := app.readJSON(w, r, &input); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	input.Email = strings.TrimSpace(input.Email)
	input.OTP = strings.TrimSpace(input.OTP)

	if err := app.apiValidator.Struct(input); err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	err := app.users.ResetPassword(input.Email, input.OTP, input.NewPassword, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidOTP):
			recordAuthEvent(eventPasswordReset, outcomeFailure)
			app.errorResponse(w, r, http.StatusBadRequest, "Invalid OTP")
		case errors.Is(err, models.ErrOTPExpired):
			recordAuthEvent(eventPasswordReset, outcomeFailure)
			app.errorResponse(w, r, http.StatusBadRequest, "OTP has expired")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	recordAuthEvent(eventPasswordReset, outcomeSuccess)

	if err := app.writeJSON(w, http.StatusOK, envelope{"message": "Password has been reset"}); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) apiLogout(w http.ResponseWriter, r *http.Request) {
	app.setTokenCookie(w, "", -1)

	if err := app.writeJSON(w, http.StatusOK, envelope{"message": "Logged out successfully"}); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
