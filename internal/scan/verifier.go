// Package scan verifies decoded QR payloads and tracks scanner sessions
// through an explicit state machine, so the capture slot backing a session
// is released exactly once no matter how the session ends.
package scan

import (
	"crypto/subtle"

	"server/internal/domain"
)

// Verifier checks decoded QR payloads against the pre-shared venue token.
// This is a capability check, not a cryptographic proof: anyone who has
// seen the printed code can replay the payload. The token is injected from
// configuration so deployments and tests can swap it.
type Verifier struct {
	token string
}

// NewVerifier creates a verifier for the given venue token.
func NewVerifier(token string) *Verifier {
	return &Verifier{token: token}
}

// Verify reports whether the decoded payload matches the venue token
// exactly. Mismatches yield domain.ErrInvalidQRPayload.
func (v *Verifier) Verify(payload string) error {
	if subtle.ConstantTimeCompare([]byte(v.token), []byte(payload)) != 1 {
		return domain.ErrInvalidQRPayload
	}
	return nil
}
