package captcha

import "time"

// GenerateRequest is the payload for the captcha-generate service.
type GenerateRequest struct{}

// GenerateResponse carries the challenge for the client to solve.
type GenerateResponse struct {
	ChallengeID string    `json:"challenge_id"`
	Question    string    `json:"question"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// VerifyRequest is the payload for the captcha-verify service.
type VerifyRequest struct {
	ChallengeID string `json:"challenge_id"`
	Answer      int    `json:"answer"`
}

// VerifyResponse reports whether the answer was accepted. The challenge
// is consumed either way.
type VerifyResponse struct {
	Valid bool `json:"valid"`
}
