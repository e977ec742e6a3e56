package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/accounts-api/internal/auth"
	"github.com/sakif/accounts-api/internal/service"
)

// OAuthHandler manages the GitHub login flow. These routes register only when
// GitHub OAuth credentials are configured; password auth works either way.
type OAuthHandler struct {
	github   *auth.GitHubProvider
	auth     *service.AuthService
	tokenTTL time.Duration
	logger   *slog.Logger
}

func NewOAuthHandler(
	github *auth.GitHubProvider,
	authSvc *service.AuthService,
	tokenTTL time.Duration,
	logger *slog.Logger,
) *OAuthHandler {
	return &OAuthHandler{
		github:   github,
		auth:     authSvc,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// HandleGitHubLogin redirects the browser to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// CSRF PROTECTION VIA STATE:
// A random state value goes both into the redirect URL and into a short-lived
// HttpOnly cookie. The callback verifies the two match, proving the flow was
// initiated here and not forged cross-site.
func (h *OAuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // long enough to approve, short enough to limit replay
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth login.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
// FLOW: verify state → exchange code for the GitHub profile → upsert the
// account → issue our JWT in an HttpOnly cookie → redirect home.
func (h *OAuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("oauth callback: missing state cookie")
		writeErrorEnvelope(w, http.StatusBadRequest, "invalid OAuth state")
		return
	}

	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("oauth callback: state mismatch")
		writeErrorEnvelope(w, http.StatusBadRequest, "invalid OAuth state")
		return
	}

	// State is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("oauth callback: user denied authorization",
			slog.String("error", errParam),
		)
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeErrorEnvelope(w, http.StatusBadRequest, "missing OAuth code")
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: GitHub exchange failed", slog.String("error", err.Error()))
		writeErrorEnvelope(w, http.StatusInternalServerError, "authentication failed")
		return
	}

	result, err := h.auth.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("oauth callback: upsert failed",
			slog.Int64("githubID", ghUser.ID),
			slog.String("error", err.Error()),
		)
		writeErrorEnvelope(w, http.StatusInternalServerError, "authentication failed")
		return
	}

	// The JWT rides in an HttpOnly cookie for browser sessions — JavaScript
	// can't read it, so XSS can't steal it. API clients use the
	// Authorization header instead; the middleware accepts both.
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // requires HTTPS — enable in production
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /auth/logout
//
// Sessions are stateless, so "logout" is deleting the client-side cookie. The
// token itself stays technically valid until expiry — there is no revocation
// list — but without the cookie the browser can't present it.
func (h *OAuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeSuccess(w, http.StatusOK, nil, "logged out")
}
