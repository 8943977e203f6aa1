package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/core/port"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/infra/logger"
)

const (
	defaultBaseURL = "https://api.brevo.com/v3/smtp/email"
	defaultTimeout = 10 * time.Second

	resetSubject = "Código de recuperación de contraseña - RaícesMX"
)

// BrevoConfig holds the transactional email provider settings.
type BrevoConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	BaseURL   string
	Timeout   time.Duration
}

// BrevoMailer delivers transactional email through the Brevo REST API.
type BrevoMailer struct {
	cfg        BrevoConfig
	httpClient *http.Client
	log        *zap.Logger
}

// NewBrevoMailer validates the provider settings and builds a mailer.
func NewBrevoMailer(cfg BrevoConfig, log *zap.Logger) (*BrevoMailer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("brevo: api key is required")
	}
	if cfg.FromEmail == "" {
		return nil, fmt.Errorf("brevo: sender address is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &BrevoMailer{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}, nil
}

type brevoParty struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoSendRequest struct {
	Sender      brevoParty   `json:"sender"`
	To          []brevoParty `json:"to"`
	Subject     string       `json:"subject"`
	HTMLContent string       `json:"htmlContent"`
}

// SendPasswordResetCode delivers the recovery code email.
func (m *BrevoMailer) SendPasswordResetCode(ctx context.Context, email, fullName, code string) error {
	payload := brevoSendRequest{
		Sender:      brevoParty{Name: m.cfg.FromName, Email: m.cfg.FromEmail},
		To:          []brevoParty{{Name: fullName, Email: email}},
		Subject:     resetSubject,
		HTMLContent: renderResetCodeEmail(fullName, code),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("brevo: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("brevo: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", m.cfg.APIKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("brevo: send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("brevo: send email: status %d: %s", resp.StatusCode, string(detail))
	}

	m.log.Info("reset code email sent",
		zap.String("email", logger.MaskEmail(email)),
	)

	return nil
}

var _ port.Mailer = (*BrevoMailer)(nil)
