package main

import (
	"bytes"
	"html"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-playground/form/v4"
	"github.com/mabego/authify/internal/mailer"
	mailmocks "github.com/mabego/authify/internal/mailer/mocks"
	"github.com/mabego/authify/internal/models/mocks"
	"github.com/mabego/authify/internal/token"
)

// csrfTokenRX captures the CSRF token value from a rendered form.
var csrfTokenRX = regexp.MustCompile(`<input type="hidden" name="csrf_token" value="(.+)">`)

var testTokenSecret = []byte(strings.Repeat("test-signing-key-", 4))

func extractCSRFToken(t *testing.T, body string) string {
	t.Helper()

	// FindStringSubmatch returns an array with the entire matched pattern at index 0,
	// and the values of any captured data in the subsequent indices.
	matches := csrfTokenRX.FindStringSubmatch(body)
	if len(matches) < 2 {
		t.Fatal("no csrf token found in body")
	}

	return html.UnescapeString(matches[1])
}

// newTestApplication creates an instance of the application struct with mock data. The returned mailer
// records every email the application sends.
func newTestApplication(t *testing.T) (*application, *mailmocks.Mailer) {
	t.Helper()

	templateCache, err := newTemplateCache()
	if err != nil {
		t.Fatal(err)
	}

	tokens, err := token.New(token.Config{Secret: testTokenSecret, Issuer: TokenIssuer, TTL: TokenLifetime})
	if err != nil {
		t.Fatal(err)
	}

	formDecoder := form.NewDecoder()

	sessionManager := scs.New()
	sessionManager.Lifetime = SessionLifetime
	sessionManager.Cookie.Secure = true

	sentMail := &mailmocks.Mailer{}

	return &application{
		errorLog:       log.New(io.Discard, "", 0),
		infoLog:        log.New(io.Discard, "", 0),
		users:          &mocks.UserModel{},
		templateCache:  templateCache,
		formDecoder:    formDecoder,
		sessionManager: sessionManager,
		notifier:       mailer.NewNotifier(sentMail),
		tokens:         tokens,
		apiValidator:   newAPIValidator(),
	}, sentMail
}

// A custom testServer type that embeds an httptest.Server instance.
type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	t.Helper()

	ts := httptest.NewTLSServer(h)
	t.Cleanup(ts.Close)

	// Any response cookies will now be stored and sent with test server client requests.
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}

	ts.Client().Jar = jar

	// Disable redirect-following so that tests can inspect the 303 responses.
	ts.Client().CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	ts.Client().Timeout = 10 * time.Second

	return &testServer{ts}
}

// ts.get makes a GET request to a given url path using the test server client and returns the response
// status code, headers, and body.
func (ts *testServer) get(t *testing.T, urlPath string) (int, http.Header, string) {
	t.Helper()

	rs, err := ts.Client().Get(ts.URL + urlPath)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, rs)
}

// postForm sends POST requests to the test server.
func (ts *testServer) postForm(t *testing.T, urlPath string, form url.Values) (int, http.Header, string) {
	t.Helper()

	rs, err := ts.Client().PostForm(ts.URL+urlPath, form)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, rs)
}

// postJSON sends a JSON body to the test server.
func (ts *testServer) postJSON(t *testing.T, urlPath, body string) (int, http.Header, string) {
	t.Helper()

	rs, err := ts.Client().Post(ts.URL+urlPath, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, rs)
}

// login signs in through the HTML form and returns a CSRF token for later posts.
func (ts *testServer) login(t *testing.T, email, password string) string {
	t.Helper()

	_, _, body := ts.get(t, "/user/login")
	csrfToken := extractCSRFToken(t, body)

	form := url.Values{}
	form.Add("email", email)
	form.Add("password", password)
	form.Add("csrf_token", csrfToken)

	code, _, _ := ts.postForm(t, "/user/login", form)
	if code != http.StatusSeeOther {
		t.Fatalf("login as %s: got status %d", email, code)
	}

	return csrfToken
}

func readResponse(t *testing.T, rs *http.Response) (int, http.Header, string) {
	t.Helper()

	defer rs.Body.Close()

	body, err := io.ReadAll(rs.Body)
	if err != nil {
		t.Fatal(err)
	}
	body = bytes.TrimSpace(body)

	return rs.StatusCode, rs.Header, string(body)
}
