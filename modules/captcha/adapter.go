package captcha

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// CaptchaPort defines the challenge operations other modules use.
type CaptchaPort interface {
	Generate(ctx context.Context) (*GenerateResponse, error)
	Verify(ctx context.Context, challengeID string, answer int) (bool, error)
}

// captchaAdapter wraps ServiceContainer for type-safe cross-module calls.
type captchaAdapter struct {
	container mono.ServiceContainer
}

// NewCaptchaAdapter creates a new adapter for the captcha services.
func NewCaptchaAdapter(container mono.ServiceContainer) CaptchaPort {
	if container == nil {
		panic("captcha adapter requires non-nil ServiceContainer")
	}
	return &captchaAdapter{container: container}
}

// Generate issues a new challenge via the captcha-generate service.
func (a *captchaAdapter) Generate(ctx context.Context) (*GenerateResponse, error) {
	var resp GenerateResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "captcha-generate", json.Marshal, json.Unmarshal, &GenerateRequest{}, &resp,
	); err != nil {
		return nil, fmt.Errorf("captcha-generate service call failed: %w", err)
	}
	return &resp, nil
}

// Verify checks an answer via the captcha-verify service.
func (a *captchaAdapter) Verify(ctx context.Context, challengeID string, answer int) (bool, error) {
	req := VerifyRequest{ChallengeID: challengeID, Answer: answer}
	var resp VerifyResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "captcha-verify", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return false, fmt.Errorf("captcha-verify service call failed: %w", err)
	}
	return resp.Valid, nil
}
