package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-playground/form/v4"
	"github.com/justinas/nosurf"
	"github.com/mabego/authify/internal/models"
	"github.com/mabego/authify/internal/otp"
)

var ErrNoTmpl = errors.New("template does not exist")

// serverError helper writes an error message and a stack trace to the errorLog,
// then sends a generic 500 Internal Server Error response to the user.
func (app *application) serverError(w http.ResponseWriter, err error) {
	trace := fmt.Sprintf("%s\n%s", err.Error(), debug.Stack())
	app.errorLog.Output(2, trace)

	if app.debug {
		http.Error(w, trace, http.StatusInternalServerError)
		return
	}

	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// clientError helper sends a specific status code and its description to the user.
func (app *application) clientError(w http.ResponseWriter, status int) {
	http.Error(w, http.StatusText(status), status)
}

// notFound helper is a wrapper around clientError that sends a 404 Not Found response to the user.
func (app *application) notFound(w http.ResponseWriter) {
	app.clientError(w, http.StatusNotFound)
}

func (app *application) render(w http.ResponseWriter, status int, page string, data *templateData) {
	// Use the page name as the map key to retrieve a template set from the cache
	ts, ok := app.templateCache[page]
	if !ok {
		err := fmt.Errorf("%w: %s", ErrNoTmpl, page)
		app.serverError(w, err)
		return
	}

	buf := new(bytes.Buffer)

	// Execute the template set and write the template to the buffer instead of the response body.
	err := ts.ExecuteTemplate(buf, "base", data)
	if err != nil {
		app.serverError(w, err)
		return
	}

	w.WriteHeader(status)

	_, err = buf.WriteTo(w)
	if err != nil {
		app.serverError(w, err)
		return
	}
}

func (app *application) newTemplateData(r *http.Request) *templateData {
	return &templateData{
		IsAuthenticated: app.isAuthenticated(r),
		IsVerified:      app.isVerified(r),
		CurrentYear:     time.Now().Year(),
		Flash:           app.sessionManager.PopString(r.Context(), "flash"),
		CSRFToken:       nosurf.Token(r),
		User:            app.authenticatedUser(r),
	}
}

func (app *application) decodePostForm(r *http.Request, dst any) error {
	err := r.ParseForm()
	if err != nil {
		return err
	}

	err = app.formDecoder.Decode(dst, r.PostForm)
	if err != nil {
		// Check for a non-nil pointer through the error InvalidDecoderError
		var invalidDecoderError *form.InvalidDecoderError

		if errors.As(err, &invalidDecoderError) {
			panic(err)
		}

		return fmt.Errorf("form decoding error: %w", err)
	}

	return nil
}

func (app *application) isAuthenticated(r *http.Request) bool {
	isAuthenticated, ok := r.Context().Value(isAuthenticatedContextKey).(bool)
	if !ok {
		return false
	}

	return isAuthenticated
}

func (app *application) isVerified(r *http.Request) bool {
	isVerified, ok := r.Context().Value(isVerifiedContextKey).(bool)
	if !ok {
		return false
	}

	return isVerified
}

// authenticatedUser returns the user loaded by the authenticate middleware, or nil.
func (app *application) authenticatedUser(r *http.Request) *models.User {
	user, ok := r.Context().Value(authenticatedUserKey).(*models.User)
	if !ok {
		return nil
	}

	return user
}

// issueVerifyOTP stores a fresh email verification code for the user and emails it.
func (app *application) issueVerifyOTP(ctx context.Context, user *models.User) error {
	code, err := otp.Generate()
	if err != nil {
		return err
	}

	err = app.users.SetVerifyOTP(user.ID, code, time.Now().Add(otp.VerifyLifetime))
	if err != nil {
		return err
	}

	err = app.notifier.SendVerifyOTP(ctx, user.Email, code)
	if err != nil {
		recordAuthEvent(eventOTPSent, outcomeFailure)
		return err
	}

	recordAuthEvent(eventOTPSent, outcomeSuccess)
	return nil
}

// issueResetOTP stores a password reset code for the account with the email and emails it.
// An unknown email is not an error.
func (app *application) issueResetOTP(ctx context.Context, email string) error {
	code, err := otp.Generate()
	if err != nil {
		return err
	}

	err = app.users.SetResetOTP(email, code, time.Now().Add(otp.ResetLifetime))
	if err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			app.infoLog.Printf("password reset requested for unknown email %s", email)
			return nil
		}
		return err
	}

	err = app.notifier.SendResetOTP(ctx, email, code)
	if err != nil {
		recordAuthEvent(eventOTPSent, outcomeFailure)
		return err
	}

	recordAuthEvent(eventOTPSent, outcomeSuccess)
	return nil
}

// sendWelcome emails the welcome message. Delivery failures are logged, not returned.
func (app *application) sendWelcome(ctx context.Context, email, name string) {
	if err := app.notifier.SendWelcome(ctx, email, name); err != nil {
		app.errorLog.Printf("welcome email: %v", err)
	}
}
