package api

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
)

const (
	// csrfCookieName is readable by scripts so they can echo it in the header.
	csrfCookieName = "csrf_token"
	csrfHeaderName = "X-CSRF-Token"
	csrfMaxAge     = 24 * 60 * 60
)

var errCSRF = errors.New("csrf token mismatch")

// CSRFConfig configures the anti-forgery cookie.
type CSRFConfig struct {
	CookieSecure bool
	CookieDomain string
}

// checkCSRF verifies the double-submit token of a mutating request.
func checkCSRF(r *http.Request) error {
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil || cookie.Value == "" {
		return errCSRF
	}
	header := r.Header.Get(csrfHeaderName)
	if header == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) != 1 {
		return errCSRF
	}
	return nil
}

func (a *API) csrfToken(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Token string `json:"token"`
	}

	if cookie, err := r.Cookie(csrfCookieName); err == nil && cookie.Value != "" {
		a.respond(w, http.StatusOK, response{Token: cookie.Value})
		return
	}

	token, err := generateCSRFToken()
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not generate token")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		Domain:   a.CSRF.CookieDomain,
		MaxAge:   csrfMaxAge,
		Secure:   a.CSRF.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	a.respond(w, http.StatusOK, response{Token: token})
}

func generateCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
