package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"
)

// ErrInvalidToken is returned for any token that fails verification: malformed
// input, a signature mismatch, or age beyond the caller's max age. The cases
// are deliberately indistinguishable so a caller cannot learn whether a token
// ever existed or merely expired.
var ErrInvalidToken = errors.New("invalid or expired token")

// Strict mode rejects non-zero padding bits, so no two distinct encodings
// decode to the same bytes.
var b64 = base64.RawURLEncoding.Strict()

// Signer produces and verifies signed, time-limited tokens carrying a JSON
// payload. The signing key is derived from the application secret, a salt, and
// a purpose string, so tokens issued for one purpose never verify for another.
// Tokens are self-contained and never persisted; there is no early revocation.
type Signer struct {
	key []byte
	now func() time.Time
}

// NewSigner derives a signing key for the given purpose. All three inputs are
// required; construction fails rather than falling back to a process-wide
// default.
func NewSigner(secret, salt, purpose string) (*Signer, error) {
	if secret == "" {
		return nil, fmt.Errorf("signing secret is required")
	}
	if salt == "" {
		return nil, fmt.Errorf("signing salt is required")
	}
	if purpose == "" {
		return nil, fmt.Errorf("signing purpose is required")
	}

	// Derive a dedicated key so the raw application secret is never used
	// directly as MAC key material.
	key := make([]byte, sha256.Size)
	kdf := hkdf.New(sha256.New, []byte(secret), []byte(salt), []byte(purpose))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}

	return &Signer{key: key, now: time.Now}, nil
}

// Sign serializes the payload and returns an opaque token of the form
// base64(payload).base64(issued-at).base64(signature).
func (s *Signer) Sign(payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	payloadSeg := b64.EncodeToString(body)
	timeSeg := b64.EncodeToString([]byte(strconv.FormatInt(s.now().Unix(), 10)))

	mac := s.sign(payloadSeg + "." + timeSeg)
	return payloadSeg + "." + timeSeg + "." + b64.EncodeToString(mac), nil
}

// Unsign verifies the token signature, checks the elapsed time against maxAge,
// and unmarshals the payload into out. Any failure returns ErrInvalidToken.
func (s *Signer) Unsign(token string, maxAge time.Duration, out any) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ErrInvalidToken
	}

	mac, err := b64.DecodeString(parts[2])
	if err != nil {
		return ErrInvalidToken
	}
	if !hmac.Equal(mac, s.sign(parts[0]+"."+parts[1])) {
		return ErrInvalidToken
	}

	// Signature is valid; the remaining segments are trusted input.
	timeRaw, err := b64.DecodeString(parts[1])
	if err != nil {
		return ErrInvalidToken
	}
	issuedAt, err := strconv.ParseInt(string(timeRaw), 10, 64)
	if err != nil {
		return ErrInvalidToken
	}
	age := s.now().Sub(time.Unix(issuedAt, 0))
	if age < 0 || age > maxAge {
		return ErrInvalidToken
	}

	body, err := b64.DecodeString(parts[0])
	if err != nil {
		return ErrInvalidToken
	}
	if err := json.Unmarshal(body, out); err != nil {
		return ErrInvalidToken
	}
	return nil
}

func (s *Signer) sign(data string) []byte {
	h := hmac.New(sha256.New, s.key)
	h.Write([]byte(data))
	return h.Sum(nil)
}
