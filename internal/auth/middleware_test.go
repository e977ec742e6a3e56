package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sakif/accounts-api/internal/apperror"
	"github.com/sakif/accounts-api/internal/model"
)

// testLogger returns a logger that swallows output so test runs stay quiet.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUserLoader resolves subject ids from an in-memory map — no store needed
// to exercise the middleware's decision chain.
type fakeUserLoader struct {
	users map[string]*model.User
}

func (f *fakeUserLoader) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperror.NotFound("user", id)
}

// newMiddlewareFixture wires a RequireAuth middleware around a probe handler
// that records whether it ran and which user it saw.
func newMiddlewareFixture(t *testing.T) (*TokenService, *fakeUserLoader, http.Handler, *bool, **model.User) {
	t.Helper()

	tokens := newTestTokenService(t)
	loader := &fakeUserLoader{users: map[string]*model.User{
		"user-1": {ID: "user-1", FullName: "Ann Lee", Email: "a@x.com"},
	}}

	handlerRan := false
	var seenUser *model.User
	probe := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRan = true
		seenUser, _ = CurrentUser(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	logger := testLogger()
	wrapped := RequireAuth(tokens, loader, logger)(probe)
	return tokens, loader, wrapped, &handlerRan, &seenUser
}

// decodeEnvelope pulls the standard {error,data,message} shape out of a
// recorded response.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (bool, string) {
	t.Helper()
	var env struct {
		Error   bool   `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decoding envelope: %v (body: %s)", err, rec.Body.String())
	}
	return env.Error, env.Message
}

// =========================================================================
// REJECTION CHAIN TESTS
// =========================================================================

func TestRequireAuth_NoHeader(t *testing.T) {
	_, _, mw, handlerRan, _ := newMiddlewareFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/allUsers", nil)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if isErr, msg := decodeEnvelope(t, rec); !isErr || msg != "token not provided" {
		t.Errorf("envelope = (%v, %q), want (true, %q)", isErr, msg, "token not provided")
	}
	if *handlerRan {
		t.Error("handler must not run when no token is supplied")
	}
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no scheme", "just-a-token"},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"empty bearer part", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, mw, handlerRan, _ := newMiddlewareFixture(t)

			req := httptest.NewRequest(http.MethodGet, "/auth/allUsers", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if _, msg := decodeEnvelope(t, rec); msg != "invalid token format" {
				t.Errorf("message = %q, want %q", msg, "invalid token format")
			}
			if *handlerRan {
				t.Error("handler must not run for a malformed header")
			}
		})
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	tokens, _, mw, handlerRan, _ := newMiddlewareFixture(t)

	// Expired and tampered tokens both collapse to the same client response.
	expired, _ := tokens.IssueWithTTL("user-1", "a@x.com", -time.Second)
	valid, _ := tokens.Issue("user-1", "a@x.com")
	tampered := valid[:len(valid)-3] + "xxx"

	for name, token := range map[string]string{"expired": expired, "tampered": tampered} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/allUsers", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
			if _, msg := decodeEnvelope(t, rec); msg != "invalid or expired token" {
				t.Errorf("message = %q, want %q", msg, "invalid or expired token")
			}
		})
	}

	if *handlerRan {
		t.Error("handler must not run for an invalid token")
	}
}

// A validly-signed token whose subject no longer exists is rejected like an
// invalid token — not a 404, which would leak account state.
func TestRequireAuth_SubjectDeleted(t *testing.T) {
	tokens, _, mw, handlerRan, _ := newMiddlewareFixture(t)

	token, _ := tokens.Issue("user-gone", "ghost@x.com")

	req := httptest.NewRequest(http.MethodGet, "/auth/allUsers", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if *handlerRan {
		t.Error("handler must not run for a deleted subject")
	}
}

// =========================================================================
// SUCCESS PATH TESTS
// =========================================================================

func TestRequireAuth_ValidToken(t *testing.T) {
	tokens, _, mw, handlerRan, seenUser := newMiddlewareFixture(t)

	token, _ := tokens.Issue("user-1", "a@x.com")

	req := httptest.NewRequest(http.MethodGet, "/auth/allUsers", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if !*handlerRan {
		t.Fatal("handler should have run for a valid token")
	}
	if *seenUser == nil || (*seenUser).ID != "user-1" {
		t.Errorf("CurrentUser() = %+v, want user-1", *seenUser)
	}
}

// The OAuth flow stores the JWT in an HttpOnly cookie; the middleware accepts
// it when no Authorization header is present.
func TestRequireAuth_CookieFallback(t *testing.T) {
	tokens, _, mw, handlerRan, _ := newMiddlewareFixture(t)

	token, _ := tokens.Issue("user-1", "a@x.com")

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !*handlerRan {
		t.Error("handler should have run with a valid cookie token")
	}
}

func TestCurrentUser_EmptyContext(t *testing.T) {
	if u, ok := CurrentUser(context.Background()); ok || u != nil {
		t.Errorf("CurrentUser() on empty context = (%+v, %v), want (nil, false)", u, ok)
	}
}
