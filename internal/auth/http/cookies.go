package http

import (
	"net/http"
	"time"

	"github.com/docuchat/docuchat/internal/auth/service"
)

// SessionCookies writes the three session cookies. Access and refresh are
// httpOnly; the CSRF cookie is readable by scripts so the client can echo it
// in the X-CSRF-Token header.
type SessionCookies struct {
	AccessName  string
	RefreshName string
	CSRFName    string
	Domain      string
	Secure      bool
	Now         func() time.Time
}

func (c SessionCookies) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c SessionCookies) cookie(name, value string, maxAge int, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   maxAge,
		HttpOnly: httpOnly,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Set writes the cookies for a freshly issued session.
func (c SessionCookies) Set(w http.ResponseWriter, s service.Session) {
	now := c.now()
	refreshAge := maxAge(s.RefreshExpiresAt, now)

	http.SetCookie(w, c.cookie(c.AccessName, s.AccessToken, maxAge(s.AccessExpiresAt, now), true))
	http.SetCookie(w, c.cookie(c.RefreshName, s.RefreshToken, refreshAge, true))
	http.SetCookie(w, c.cookie(c.CSRFName, s.CSRFToken, refreshAge, false))
}

// Clear expires all three cookies with the attributes they were set with.
func (c SessionCookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(c.AccessName, "", -1, true))
	http.SetCookie(w, c.cookie(c.RefreshName, "", -1, true))
	http.SetCookie(w, c.cookie(c.CSRFName, "", -1, false))
}

// maxAge is the whole seconds until expiresAt, at least 1 so the browser
// does not treat it as a deletion.
func maxAge(expiresAt, now time.Time) int {
	secs := int(expiresAt.Sub(now) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
