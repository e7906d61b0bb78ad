package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/meridianx/backoffice/internal/config"
)

// Verifier checks a CAPTCHA response token submitted by a client.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// RecaptchaVerifier verifies tokens against the Google reCAPTCHA siteverify
// endpoint. Any transport error, non-2xx status, or malformed body counts as
// a failed verification: the gate fails closed.
type RecaptchaVerifier struct {
	secretKey string
	verifyURL string
	client    *http.Client
	logger    *slog.Logger
}

func NewRecaptchaVerifier(cfg *config.CaptchaConfig, logger *slog.Logger) *RecaptchaVerifier {
	return &RecaptchaVerifier{
		secretKey: cfg.SecretKey,
		verifyURL: cfg.VerifyURL,
		client:    &http.Client{Timeout: cfg.Timeout},
		logger:    logger,
	}
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

func (v *RecaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if token == "" {
		return false, nil
	}

	form := url.Values{}
	form.Set("secret", v.secretKey)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("failed to build siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Warn("captcha verification request failed", slog.String("error", err.Error()))
		return false, fmt.Errorf("siteverify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		v.logger.Warn("captcha verification returned non-2xx status", slog.Int("status", resp.StatusCode))
		return false, fmt.Errorf("siteverify returned status %d", resp.StatusCode)
	}

	var body siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		v.logger.Warn("captcha verification response malformed", slog.String("error", err.Error()))
		return false, fmt.Errorf("siteverify response malformed: %w", err)
	}

	if !body.Success {
		v.logger.Info("captcha token rejected", slog.Any("error_codes", body.ErrorCodes))
	}

	return body.Success, nil
}

var _ Verifier = (*RecaptchaVerifier)(nil)
