// Package session issues and verifies wishlist session tokens. A token is
// "<uuid>.<base64url(hmac-sha256(uuid))>" and travels either in the
// fanrc_wishlist cookie or in the X-Wishlist-Session header.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/helloivanco/fanrc/pkg/middleware"
)

// CookieName is the wishlist session cookie.
const CookieName = "fanrc_wishlist"

// ErrInvalid is returned for tokens that are malformed or carry a bad signature.
var ErrInvalid = errors.New("invalid wishlist session token")

// Codec signs and verifies session tokens.
type Codec struct {
	secret []byte
	maxAge time.Duration
	secure bool
}

// NewCodec creates a codec. maxAge is the cookie lifetime.
func NewCodec(secret []byte, maxAge time.Duration, secure bool) *Codec {
	return &Codec{secret: secret, maxAge: maxAge, secure: secure}
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// Encode signs a session id.
func (c *Codec) Encode(id string) string {
	return id + "." + c.sign(id)
}

// Decode verifies a token and returns its session id.
func (c *Codec) Decode(token string) (string, error) {
	id, sig, ok := strings.Cut(token, ".")
	if !ok || id == "" || sig == "" {
		return "", ErrInvalid
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", ErrInvalid
	}
	if !hmac.Equal([]byte(c.sign(id)), []byte(sig)) {
		return "", ErrInvalid
	}
	return id, nil
}

// Resolve extracts the session from the X-Wishlist-Session header or, failing
// that, the session cookie. It satisfies middleware.SessionResolver.
func (c *Codec) Resolve(r *http.Request) (string, error) {
	if token := r.Header.Get(middleware.SessionHeader); token != "" {
		return c.Decode(token)
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", nil
	}
	return c.Decode(cookie.Value)
}

// SetCookie writes the session cookie for id.
func (c *Codec) SetCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    c.Encode(id),
		Path:     "/",
		MaxAge:   int(c.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *Codec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
