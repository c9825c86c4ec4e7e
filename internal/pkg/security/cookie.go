package security

import (
	"net/http"
	"time"
)

// NewSecureCookie returns an HttpOnly, Secure, SameSite=Strict cookie.
// A negative maxAge deletes the cookie.
func NewSecureCookie(name, val string, maxAge time.Duration) *http.Cookie {
	age := int(maxAge.Seconds())
	if maxAge < 0 {
		age = -1
	}

	return &http.Cookie{
		Name:     name,
		Value:    val,
		Path:     "/",
		MaxAge:   age,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}
