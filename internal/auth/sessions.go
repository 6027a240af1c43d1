package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
	"time"
)

const (
	SessionCookieName = "strava_session"
	StateCookieName   = "strava_oauth_state"

	stateCookieTTL = 10 * time.Minute
)

// CookieCodec signs cookie values with HMAC-SHA256. With an empty secret values
// pass through unsigned (dev only).
type CookieCodec struct {
	secret []byte
}

func NewCookieCodec(secret []byte) CookieCodec {
	secretCopy := make([]byte, len(secret))
	copy(secretCopy, secret)
	return CookieCodec{secret: secretCopy}
}

func (c CookieCodec) Encode(value string) string {
	if len(c.secret) == 0 {
		return value
	}

	mac := hmac.New(sha256.New, c.secret)
	_, _ = mac.Write([]byte(value))
	sig := mac.Sum(nil)

	return value + "." + base64.RawURLEncoding.EncodeToString(sig)
}

func (c CookieCodec) Decode(cookieValue string) (string, bool) {
	if len(c.secret) == 0 {
		return cookieValue, cookieValue != ""
	}

	value, sigB64, ok := strings.Cut(cookieValue, ".")
	if !ok || value == "" || sigB64 == "" {
		return "", false
	}

	sig, err := base64.RawURLEncoding.DecodeString(sigB64)
	if err != nil || len(sig) != sha256.Size {
		return "", false
	}

	mac := hmac.New(sha256.New, c.secret)
	_, _ = mac.Write([]byte(value))
	expected := mac.Sum(nil)
	if subtle.ConstantTimeCompare(sig, expected) != 1 {
		return "", false
	}

	return value, true
}

func SetSessionCookie(w http.ResponseWriter, cookieValue string, ttl time.Duration, secure bool) {
	setCookie(w, SessionCookieName, cookieValue, ttl, secure)
}

func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	clearCookie(w, SessionCookieName, secure)
}

func SetStateCookie(w http.ResponseWriter, cookieValue string, secure bool) {
	setCookie(w, StateCookieName, cookieValue, stateCookieTTL, secure)
}

func ClearStateCookie(w http.ResponseWriter, secure bool) {
	clearCookie(w, StateCookieName, secure)
}

// NewState returns a random OAuth state value.
func NewState() (string, error) {
	var b [24]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}

func setCookie(w http.ResponseWriter, name, value string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
	})
}

func clearCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}
