package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/mabego/authify/ui"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	// Set the custom handler for 404 responses through httprouter.
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.notFound(w)
	})

	// Use an embedded file system instead of reading files from the disk at runtime.
	fileServer := http.FileServer(http.FS(ui.Files))
	router.Handler(http.MethodGet, "/static/*filepath", fileServer)

	router.HandlerFunc(http.MethodGet, "/ping", ping)
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	// An unprotected middleware chain using alice, specific to 'dynamic' application routes.
	dynamic := alice.New(app.sessionManager.LoadAndSave, noSurf, app.authenticate)

	router.Handler(http.MethodGet, "/", dynamic.ThenFunc(app.home))
	router.Handler(http.MethodGet, "/user/signup", dynamic.ThenFunc(app.userSignup))
	router.Handler(http.MethodPost, "/user/signup", dynamic.ThenFunc(app.userSignupPost))
	router.Handler(http.MethodGet, "/user/login", dynamic.ThenFunc(app.userLogin))
	router.Handler(http.MethodPost, "/user/login", dynamic.ThenFunc(app.userLoginPost))
	router.Handler(http.MethodGet, "/user/password/reset", dynamic.ThenFunc(app.passwordReset))
	router.Handler(http.MethodPost, "/user/password/reset", dynamic.ThenFunc(app.passwordResetPost))
	router.Handler(http.MethodGet, "/user/password/reset/confirm", dynamic.ThenFunc(app.passwordResetConfirm))
	router.Handler(http.MethodPost, "/user/password/reset/confirm", dynamic.ThenFunc(app.passwordResetConfirmPost))

	// A protected (authenticated-only) and dynamic middleware chain.
	protected := dynamic.Append(app.requireAuthentication)

	router.Handler(http.MethodPost, "/user/logout", protected.ThenFunc(app.userLogoutPost))
	router.Handler(http.MethodGet, "/account/view", protected.ThenFunc(app.accountView))
	router.Handler(http.MethodGet, "/account/password/update", protected.ThenFunc(app.accountPasswordUpdate))
	router.Handler(http.MethodPost, "/account/password/update", protected.ThenFunc(app.accountPasswordUpdatePost))
	router.Handler(http.MethodPost, "/account/verify/send", protected.ThenFunc(app.accountVerifySendPost))
	router.Handler(http.MethodGet, "/account/verify", protected.ThenFunc(app.accountVerify))
	router.Handler(http.MethodPost, "/account/verify", protected.ThenFunc(app.accountVerifyPost))

	// The JSON API authenticates with the jwt cookie instead of the session, so it skips the CSRF check.
	api := alice.New(app.authenticateToken)

	router.Handler(http.MethodPost, "/api/register", api.ThenFunc(app.apiRegister))
	router.Handler(http.MethodPost, "/api/login", api.ThenFunc(app.apiLogin))
	router.Handler(http.MethodGet, "/api/is-authenticated", api.ThenFunc(app.apiIsAuthenticated))
	router.Handler(http.MethodPost, "/api/reset-otp", api.ThenFunc(app.apiResetOTP))
	router.Handler(http.MethodPost, "/api/reset-password", api.ThenFunc(app.apiResetPassword))
	router.Handler(http.MethodPost, "/api/logout", api.ThenFunc(app.apiLogout))

	apiProtected := api.Append(app.requireToken)

	router.Handler(http.MethodGet, "/api/user", apiProtected.ThenFunc(app.apiUser))
	router.Handler(http.MethodPost, "/api/send-otp", apiProtected.ThenFunc(app.apiSendOTP))
	router.Handler(http.MethodPost, "/api/verify-otp", apiProtected.ThenFunc(app.apiVerifyOTP))

	// A middleware chain using alice containing the 'standard' middleware used for every application request.
	standard := alice.New(app.recoverPanic, app.logRequest, secureHeaders)

	return standard.Then(router)
}
