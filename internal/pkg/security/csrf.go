package security

import (
	"crypto/hmac"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ferdiebergado/storyboard/internal/config"
)

var (
	ErrMalformedToken = errors.New("csrf: malformed token")
	ErrTokenExpired   = errors.New("csrf: token expired")
	ErrBadSignature   = errors.New("csrf: signature mismatch")
)

// Baker issues cookies and verifies the ones it issued.
type Baker interface {
	Bake() (*http.Cookie, error)
	Check(*http.Cookie) error
}

var _ Baker = (*CSRFCookieBaker)(nil)

// CSRFCookieBaker issues double-submit tokens of the form
// nonce.expiry.signature, where expiry is a unix timestamp covered by the
// HMAC. The cookie is readable by scripts so the web client can echo it.
type CSRFCookieBaker struct {
	name   string
	length uint32
	ttl    time.Duration
	key    string
	now    func() time.Time
}

func NewCSRFCookieBaker(cfg *config.CSRF, securityKey string) *CSRFCookieBaker {
	return &CSRFCookieBaker{
		name:   cfg.CookieName,
		length: cfg.TokenLength,
		ttl:    cfg.CookieMaxAge.Duration,
		key:    securityKey,
		now:    time.Now,
	}
}

func (c *CSRFCookieBaker) Bake() (*http.Cookie, error) {
	nonce, err := GenerateRandomBytesURLEncoded(c.length)
	if err != nil {
		return nil, fmt.Errorf("generate csrf nonce: %w", err)
	}

	payload := nonce + "." + strconv.FormatInt(c.now().Add(c.ttl).Unix(), 10)
	sig, err := c.sign(payload)
	if err != nil {
		return nil, err
	}

	cookie := NewSecureCookie(c.name, payload+"."+sig, c.ttl)
	cookie.HttpOnly = false
	return cookie, nil
}

func (c *CSRFCookieBaker) Check(cookie *http.Cookie) error {
	payload, sig, ok := cutLast(cookie.Value, ".")
	if !ok {
		return ErrMalformedToken
	}

	_, expiry, ok := cutLast(payload, ".")
	if !ok {
		return ErrMalformedToken
	}

	want, err := c.sign(payload)
	if err != nil {
		return err
	}
	if !hmac.Equal([]byte(sig), []byte(want)) {
		return ErrBadSignature
	}

	unix, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil {
		return ErrMalformedToken
	}
	if !c.now().Before(time.Unix(unix, 0)) {
		return ErrTokenExpired
	}
	return nil
}

func (c *CSRFCookieBaker) sign(payload string) (string, error) {
	mac, err := SHA256Hash(payload, c.key)
	if err != nil {
		return "", fmt.Errorf("sign csrf token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(mac), nil
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
