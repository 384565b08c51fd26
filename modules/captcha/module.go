package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/jaevor/go-nanoid"
)

// DefaultTTL is how long a challenge stays answerable.
const DefaultTTL = 2 * time.Minute

const sweepInterval = 30 * time.Second

// CaptchaModule exposes challenge generation and verification as
// request-reply services.
type CaptchaModule struct {
	ttl       time.Duration
	store     *store
	sweepStop chan struct{}
}

var _ mono.Module = (*CaptchaModule)(nil)
var _ mono.ServiceProviderModule = (*CaptchaModule)(nil)
var _ mono.HealthCheckableModule = (*CaptchaModule)(nil)

// NewModule creates the captcha module. ttl <= 0 selects DefaultTTL.
func NewModule(ttl time.Duration) *CaptchaModule {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CaptchaModule{ttl: ttl}
}

// Name returns the module name.
func (m *CaptchaModule) Name() string {
	return "captcha"
}

// Init builds the challenge store.
func (m *CaptchaModule) Init(_ mono.ServiceContainer) error {
	newID, err := nanoid.Standard(10)
	if err != nil {
		return fmt.Errorf("failed to create id generator: %w", err)
	}
	m.store = newStore(m.ttl, newID)
	return nil
}

// RegisterServices registers the captcha services.
func (m *CaptchaModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(container, "captcha-generate", json.Unmarshal, json.Marshal, m.generate); err != nil {
		return fmt.Errorf("failed to register captcha-generate service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(container, "captcha-verify", json.Unmarshal, json.Marshal, m.verify); err != nil {
		return fmt.Errorf("failed to register captcha-verify service: %w", err)
	}

	log.Println("[captcha] Registered services: services.captcha.{captcha-generate,captcha-verify}")
	return nil
}

// Start launches the expiry sweeper.
func (m *CaptchaModule) Start(_ context.Context) error {
	m.sweepStop = make(chan struct{})
	go m.runSweeper()
	log.Printf("[captcha] Module started (TTL: %s)", m.ttl)
	return nil
}

// Stop stops the sweeper.
func (m *CaptchaModule) Stop(_ context.Context) error {
	if m.sweepStop != nil {
		close(m.sweepStop)
	}
	log.Println("[captcha] Module stopped")
	return nil
}

// Health reports the number of outstanding challenges.
func (m *CaptchaModule) Health(_ context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "challenge store not initialized",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"active_challenges": m.store.len(),
			"ttl":               m.ttl.String(),
		},
	}
}

func (m *CaptchaModule) generate(_ context.Context, _ GenerateRequest, _ *mono.Msg) (GenerateResponse, error) {
	c := m.store.generate()
	return GenerateResponse{
		ChallengeID: c.ID,
		Question:    c.Question,
		ExpiresAt:   c.ExpiresAt,
	}, nil
}

func (m *CaptchaModule) verify(_ context.Context, req VerifyRequest, _ *mono.Msg) (VerifyResponse, error) {
	if req.ChallengeID == "" {
		return VerifyResponse{}, fmt.Errorf("validation failed: challenge_id: challenge_id is required")
	}
	return VerifyResponse{Valid: m.store.verify(req.ChallengeID, req.Answer)}, nil
}

func (m *CaptchaModule) runSweeper() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if removed := m.store.sweep(); removed > 0 {
				log.Printf("[captcha] Swept %d expired challenges", removed)
			}
		case <-m.sweepStop:
			return
		}
	}
}
