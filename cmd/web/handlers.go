package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mabego/authify/internal/models"
	"github.com/mabego/authify/internal/otp"
	"github.com/mabego/authify/internal/validator"
)

const (
	MinChars         = 8
	NameMaxChars     = 255
	EmailMaxChars    = 255
	PasswordMaxBytes = 72
)

// The struct tags tell the go-playground/form decoder how to map HTML form values into the different struct fields.
// The struct tag `form:"-"` tells the decoder to completely ignore a field during decoding.
type userSignupForm struct {
	Name                string `form:"name"`
	Email               string `form:"email"`
	Password            string `form:"password"`
	validator.Validator `form:"-"`
}

type userLoginForm struct {
	Email               string `form:"email"`
	Password            string `form:"password"`
	validator.Validator `form:"-"`
}

type accountPasswordUpdateForm struct {
	CurrentPassword         string `form:"currentPassword"`
	NewPassword             string `form:"newPassword"`
	NewPasswordConfirmation string `form:"newPasswordConfirmation"`
	validator.Validator     `form:"-"`
}

// emailVerifyForm receives one value per OTP input box. Boxes and Focus refill the boxes when the form
// is redisplayed.
type emailVerifyForm struct {
	OTP                 []string           `form:"otp"`
	Boxes               [otp.Length]string `form:"-"`
	Focus               int                `form:"-"`
	validator.Validator `form:"-"`
}

type passwordResetRequestForm struct {
	Email               string `form:"email"`
	validator.Validator `form:"-"`
}

type passwordResetForm struct {
	Email                   string             `form:"-"`
	OTP                     []string           `form:"otp"`
	NewPassword             string             `form:"newPassword"`
	NewPasswordConfirmation string             `form:"newPasswordConfirmation"`
	Boxes                   [otp.Length]string `form:"-"`
	Focus                   int                `form:"-"`
	validator.Validator     `form:"-"`
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	data := app.newTemplateData(r)
	app.render(w, http.StatusOK, "home.page.tmpl", data)
}

func (app *application) userSignup(w http.ResponseWriter, r *http.Request) {
	data := app.newTemplateData(r)
	data.Form = userSignupForm{}
	app.render(w, http.StatusOK, "signup.page.tmpl", data)
}

func (app *application) userSignupPost(w http.ResponseWriter, r *http.Request) {
	var form userSignupForm

	err := app.decodePostForm(r, &form)
	if err != nil {
		app.clientError(w, http.StatusBadRequest)
		return
	}

	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)

	form.CheckField(validator.NotBlank(form.Name), "name", "This field cannot be blank")
	form.CheckField(validator.MaxChars(form.Name, NameMaxChars), "name",
		"This field cannot be more than 255 characters long")
	form.CheckField(validator.NotBlank(form.Email), "email", "This field cannot be blank")
	form.CheckField(validator.Matches(form.Email, validator.EmailRX), "email",
		"This field must be a valid email address")
	form.CheckField(validator.MaxChars(form.Email, EmailMaxChars), "email",
		"This field cannot be more than 255 characters long")
	form.CheckField(validator.NotBlank(form.Password), "password", "This field cannot be blank")
	form.CheckField(validator.MinChars(form.Password, MinChars), "password",
		"This field must be at least 8 characters long")
	form.CheckField(validator.MaxBytes(form.Password, PasswordMaxBytes), "password",
		"This field cannot be more than 72 bytes long")

	// If there are validation errors, redisplay the signup form along with a 422 status code.
	if !form.Valid() {
		data := app.newTemplateData(r)
		data.Form = form
		app.render(w, http.StatusUnprocessableEntity, "signup.page.tmpl", data)
		return
	}

	_, err = app.users.Insert(form.Name, form.Email, form.Password)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			recordAuthEvent(eventSignup, outcomeFailure)
			form.AddFieldError("email", "Email address is already in use")
			data := app.newTemplateData(r)
			data.Form = form
			app.render(w, http.StatusUnprocessableEntity, "signup.page.tmpl", data)
		} else {
			app.serverError(w, err)
		}

		return
	}

	recordAuthEvent(eventSignup, outcomeSuccess)
	app.sendWelcome(r.Context(), form.Email, form.Name)

	app.sessionManager.Put(r.Context(), "flash", "Your signup was successful. Please log in")

	http.Redirect(w, r, "/user/login", http.StatusSeeOther)
}

func (app *application) userLogin(w http.ResponseWriter, r *http.Request) {
	data := app.newTemplateData(r)
	data.Form = userLoginForm{}
	app.render(w, http.StatusOK, "login.page.tmpl", data)
}

func (app *application) userLoginPost(w http.ResponseWriter, r *http.Request) {
	var form userLoginForm

	err := app.decodePostForm(r, &form)
	if err != nil {
		app.clientError(w, http.StatusBadRequest)
		return
	}

	form.Email = strings.TrimSpace(form.Email)

	form.CheckField(validator.NotBlank(form.Email), "email", "This field cannot be blank")
	form.CheckField(validator.Matches(form.Email, validator.EmailRX), "email",
		"This field must be a valid email address")
	form.CheckField(validator.NotBlank(form.Password), "password", "This field cannot be blank")

	if !form.Valid() {
		data := app.newTemplateData(r)
		data.Form = form
		app.render(w, http.StatusUnprocessableEntity, "login.page.tmpl", data)
		return
	}

	// If the credentials are invalid, add a generic non-field error and redisplay the login form.
	id, err := app.users.Authenticate(form.Email, form.Password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			recordAuthEvent(eventLogin, outcomeFailure)
			form.AddNonFieldError("Email or password is incorrect")
			data := app.newTemplateData(r)
			data.Form = form
			app.render(w, http.StatusUnprocessableEntity, "login.page.tmpl", data)
		} else {
			app.serverError(w, err)
		}
		return
	}

	// RenewToken changes the current session ID when the authentication state changes for the user
	// with the login operation.
	err = app.sessionManager.RenewToken(r.Context())
	if err != nil {
		app.serverError(w, err)
		return
	}

	recordAuthEvent(eventLogin, outcomeSuccess)

	// Add the ID of the current user to the session, so that they are now logged in.
	app.sessionManager.Put(r.Context(), "authenticatedUserID", id)
	app.sessionManager.Put(r.Context(), "flash", "Logged in successfully")

	// PopString pops the value for the "redirectPathAfterLogin" key from the session data.
	// If there is no matching key in the session data, it will return an empty string.
	urlPath := app.sessionManager.PopString(r.Context(), "redirectPathAfterLogin")
	if urlPath != "" {
		http.Redirect(w, r, urlPath, http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *application) userLogoutPost(w http.ResponseWriter, r *http.Request) {
	// RenewToken changes the current session ID when the authentication state changes for the user
	// with the logout operation.
	err := app.sessionManager.RenewToken(r.Context())
	if err != nil {
		app.serverError(w, err)
		return
	}

	// Remove authenticatedUserID from the session data so the user is logged out.
	app.sessionManager.Remove(r.Context(), "authenticatedUserID")

	app.sessionManager.Put(r.Context(), "flash", "You've been logged out successfully!")

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *application) accountView(w http.ResponseWriter, r *http.Request) {
	data := app.newTemplateData(r)
	app.render(w, http.StatusOK, "account.page.tmpl", data)
}

func (app *application) accountPasswordUpdate(w http.ResponseWriter, r *http.Request) {
	data := app.newTemplateData(r)
	data.Form = accountPasswordUpdateForm{}

	app.render(w, http.StatusOK, "password.page.tmpl", data)
}

func (app *application) accountPasswordUpdatePost(w http.ResponseWriter, r *http.Request) {
	var form accountPasswordUpdateForm

	err := app.decodePostForm(r, &form)
	if err != nil {
		app.clientError(w, http.StatusBadRequest)
		return
	}

	form.CheckField(validator.NotBlank(form.CurrentPassword), "currentPassword",
		"This field cannot be blank")
	form.CheckField(validator.NotBlank(form.NewPassword), "newPassword",
		"This field cannot be blank")
	form.CheckField(validator.MinChars(form.NewPassword, MinChars), "newPassword",
		"This field must be at least 8 characters long")
	form.CheckField(validator.MaxBytes(form.NewPassword, PasswordMaxBytes), "newPassword",
		"This field cannot be more than 72 bytes long")
	form.CheckField(validator.NotBlank(form.NewPasswordConfirmation), "newPasswordConfirmation",
		"This field cannot be blank")
	form.CheckField(form.NewPassword == form.NewPasswordConfirmation, "newPasswordConfirmation",
		"Passwords do not match")

	if !form.Valid() {
		data := app.newTemplateData(r)
		data.Form = form

		app.render(w, http.StatusUnprocessableEntity, "password.page.tmpl", data)
		return
	}

	userID := app.sessionManager.GetInt(r.Context(), "authenticatedUserID")

	err = app.users.PasswordUpdate(userID, form.CurrentPassword, form.NewPassword)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			form.AddFieldError("currentPassword", "Current password is incorrect")

			data := app.newTemplateData(r)
			data.Form = form

			app.render(w, http.StatusUnprocessableEntity, "password.page.tmpl", data)
		} else {
			app.serverError(w, err)
		}
		return
	}

	app.sessionManager.Put(r.Context(), "flash", "Your password has been updated!")

	http.Redirect(w, r, "/account/view", http.StatusSeeOther)
}

func (app *application) accountVerifySendPost(w http.ResponseWriter, r *http.Request) {
	user := app.authenticatedUser(r)

	if user.Verified {
		app.sessionManager.Put(r.Context(), "flash", "Your email address is already verified")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	err := app.issueVerifyOTP(r.Context(), user)
	if err != nil {
		app.serverError(w, err)
		return
	}

	app.sessionManager.Put(r.Context(), "flash", fmt.Sprintf("A verification code has been sent to %s", user.Email))

	http.Redirect(w, r, "/account/verify", http.StatusSeeOther)
}

func (app *application) accountVerify(w http.ResponseWriter, r *http.Request) {
	// A verified account cannot return to the verification page.
	if app.isVerified(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := app.newTemplateData(r)
	data.Form = emailVerifyForm{}
	app.render(w, http.StatusOK, "verify.page.tmpl", data)
}

func (app *application) accountVerifyPost(w http.ResponseWriter, r *http.Request) {
	if app.isVerified(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	var form emailVerifyForm

	err := app.decodePostForm(r, &form)
	if err != nil {
		app.clientError(w, http.StatusBadRequest)
		return
	}

	code := otp.Join(form.OTP)
	form.Boxes, form.Focus = otp.Distribute(code)

	form.CheckField(otp.Valid(code), "otp", "Please enter the 6-digit OTP")

	if !form.Valid() {
		data := app.newTemplateData(r)
		data.Form = form
		app.render(w, http.StatusUnprocessableEntity, "verify.page.tmpl", data)
		return
	}

	userID := app.sessionManager.GetInt(r.Context(), "authenticatedUserID")

	err = app.users.VerifyEmail(userID, code, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidOTP):
			form.AddNonFieldError("Invalid OTP")
		case errors.Is(err, models.ErrOTPExpired):
			form.AddNonFieldError("OTP has expired. Please request a new code")
		default:
			app.serverError(w, err)
			return
		}

		recordAuthEvent(eventVerifyEmail, outcomeFailure)

		data := app.newTemplateData(r)
		data.Form = form
		app.render(w, http.StatusUnprocessableEntity, "verify.page.tmpl", data)
		return
	}

	recordAuthEvent(eventVerifyEmail, outcomeSuccess)

	app.sessionManager.Put(r.Context(), "flash", "OTP verified successfully")

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *application) passwordReset(w http.ResponseWriter, r *http.Request) {
	data := app.newTemplateData(r)
	data.Form = passwordResetRequestForm{}
	app.render(w, http.StatusOK, "reset.page.tmpl", data)
}

func (app *application) passwordResetPost(w http.ResponseWriter, r *http.Request) {
	var form passwordResetRequestForm

	err := app.decodePostForm(r, &form)
	if err != nil {
		app.clientError(w, http.StatusBadRequest)
		return
	}

	form.Email = strings.TrimSpace(form.Email)

	form.CheckField(validator.NotBlank(form.Email), "email", "This field cannot be blank")
	form.CheckField(validator.Matches(form.Email, validator.EmailRX), "email",
		"This field must be a valid email address")
	form.CheckField(validator.MaxChars(form.Email, EmailMaxChars), "email",
		"This field cannot be more than 255 characters long")

	if !form.Valid() {
		data := app.newTemplateData(r)
		data.Form = form
		app.render(w, http.StatusUnprocessableEntity, "reset.page.tmpl", data)
		return
	}

	err = app.issueResetOTP(r.Context(), form.Email)
	if err != nil {
		app.serverError(w, err)
		return
	}

	app.sessionManager.Put(r.Context(), "resetEmail", form.Email)
	app.sessionManager.Put(r.Context(), "flash",
		"If an account exists for that address, a reset code has been sent to it")

	http.Redirect(w, r, "/user/password/reset/confirm", http.StatusSeeOther)
}

func (app *application) passwordResetConfirm(w http.ResponseWriter, r *http.Request) {
	email := app.sessionManager.GetString(r.Context(), "resetEmail")
	if email == "" {
		http.Redirect(w, r, "/user/password/reset", http.StatusSeeOther)
		return
	}

	data := app.newTemplateData(r)
	data.Form = passwordResetForm{Email: email}
	app.render(w, http.StatusOK, "reset_confirm.page.tmpl", data)
}

func (app *application) passwordResetConfirmPost(w http.ResponseWriter, r *http.Request) {
	email := app.sessionManager.GetString(r.Context(), "resetEmail")
	if email == "" {
		http.Redirect(w, r, "/user/password/reset", http.StatusSeeOther)
		return
	}

	var form passwordResetForm

	err := app.decodePostForm(r, &form)
	if err != nil {
		app.clientError(w, http.StatusBadRequest)
		return
	}

	form.Email = email

	code := otp.Join(form.OTP)
	form.Boxes, form.Focus = otp.Distribute(code)

	form.CheckField(otp.Valid(code), "otp", "Please enter the 6-digit OTP")
	form.CheckField(validator.NotBlank(form.NewPassword), "newPassword", "This field cannot be blank")
	form.CheckField(validator.MinChars(form.NewPassword, MinChars), "newPassword",
		"This field must be at least 8 characters long")
	form.CheckField(validator.MaxBytes(form.NewPassword, PasswordMaxBytes), "newPassword",
		"This field cannot be more than 72 bytes long")
	form.CheckField(form.NewPassword == form.NewPasswordConfirmation, "newPasswordConfirmation",
		"Passwords do not match")

	if !form.Valid() {
		data := app.newTemplateData(r)
		data.Form = form
		app.render(w, http.StatusUnprocessableEntity, "reset_confirm.page.tmpl", data)
		return
	}

	err = app.users.ResetPassword(email, code, form.NewPassword, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidOTP):
			form.AddNonFieldError("Invalid OTP")
		case errors.Is(err, models.ErrOTPExpired):
			form.AddNonFieldError("OTP has expired. Please request a new code")
		default:
			app.serverError(w, err)
			return
		}

		recordAuthEvent(eventPasswordReset, outcomeFailure)

		data := app.newTemplateData(r)
		data.Form = form
		app.render(w, http.StatusUnprocessableEntity, "reset_confirm.page.tmpl", data)
		return
	}

	recordAuthEvent(eventPasswordReset, outcomeSuccess)

	app.sessionManager.Remove(r.Context(), "resetEmail")
	app.sessionManager.Put(r.Context(), "flash", "Your password has been reset. Please log in")

	http.Redirect(w, r, "/user/login", http.StatusSeeOther)
}

func ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodGet {
		fmt.Fprintln(w, "OK")
	}
}
