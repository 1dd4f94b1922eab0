package http

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

const flashCookieName = "flash"

// FlashStore carries one-shot notices across a redirect in a signed cookie.
// The MAC is keyed BLAKE2b-256 over the expiry and the message.
type FlashStore struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewFlashStore derives the signing key from secret.
func NewFlashStore(secret string, ttl time.Duration, now func() time.Time) *FlashStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	sum := blake2b.Sum256([]byte(secret))
	return &FlashStore{key: sum[:], ttl: ttl, now: now}
}

// Set attaches message to the response.
func (f *FlashStore) Set(w http.ResponseWriter, message string) {
	if f == nil || message == "" {
		return
	}
	expires := f.now().Add(f.ttl)
	payload := strconv.FormatInt(expires.Unix(), 10) + "|" + message
	value := base64.RawURLEncoding.EncodeToString([]byte(payload)) + "." +
		base64.RawURLEncoding.EncodeToString(f.sign([]byte(payload)))

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the pending message and clears the cookie. Tampered or expired
// cookies yield an empty message.
func (f *FlashStore) Pop(w http.ResponseWriter, r *http.Request) string {
	if f == nil {
		return ""
	}
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	message, ok := f.verify(cookie.Value)
	if !ok {
		return ""
	}
	return message
}

func (f *FlashStore) verify(value string) (string, bool) {
	encodedPayload, encodedMAC, found := strings.Cut(value, ".")
	if !found {
		return "", false
	}
	payload, err := base64.RawURLEncoding.DecodeString(encodedPayload)
	if err != nil {
		return "", false
	}
	mac, err := base64.RawURLEncoding.DecodeString(encodedMAC)
	if err != nil {
		return "", false
	}
	if subtle.ConstantTimeCompare(mac, f.sign(payload)) != 1 {
		return "", false
	}

	expiresRaw, message, found := strings.Cut(string(payload), "|")
	if !found {
		return "", false
	}
	expires, err := strconv.ParseInt(expiresRaw, 10, 64)
	if err != nil || f.now().Unix() > expires {
		return "", false
	}
	return message, true
}

func (f *FlashStore) sign(payload []byte) []byte {
	h, err := blake2b.New256(f.key)
	if err != nil {
		// Key is always 32 bytes.
		panic(err)
	}
	h.Write(payload)
	return h.Sum(nil)
}
