package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sauti-platform/sauti/src/webclient"
)

// SMSConfig carries the gateway settings. AccountSID, AuthToken and From
// are mandatory once the channel is enabled; StatusCallback is optional.
type SMSConfig struct {
	GatewayURL     string
	AccountSID     string
	AuthToken      string
	From           string
	StatusCallback string
	Timeout        time.Duration
	Attempts       int
}

type SMS struct {
	cfg    SMSConfig
	client *http.Client
}

// NewSMS validates the gateway configuration up front so a half-configured
// deployment fails at boot rather than at first delivery.
func NewSMS(cfg SMSConfig) (*SMS, error) {
	if cfg.GatewayURL == "" || cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.From == "" {
		return nil, fmt.Errorf("%w: sms gateway url, account sid, auth token and from-number are all required", ErrConfig)
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	return &SMS{cfg: cfg, client: webclient.New(cfg.Timeout)}, nil
}

func (s *SMS) Name() string { return "sms" }

// Send posts a form-encoded message to the gateway. A recipient without a
// phone route or an empty body is a silent skip, not an error.
func (s *SMS) Send(ctx context.Context, to Notifiable, msg *Message) error {
	if !to.BySMS || strings.TrimSpace(to.Phone) == "" {
		return nil
	}
	body := composeSMSBody(msg)
	if body == "" {
		return nil
	}

	form := url.Values{}
	form.Set("To", to.Phone)
	form.Set("From", s.cfg.From)
	form.Set("Body", body)
	if s.cfg.StatusCallback != "" {
		form.Set("StatusCallback", s.cfg.StatusCallback)
	}

	status, respBody, err := webclient.DoWithRetry(ctx, s.cfg.Attempts, 2*time.Second, func() (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.GatewayURL, strings.NewReader(form.Encode()))
		if err != nil {
			return 0, nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)
		resp, err := s.client.Do(req)
		if err != nil {
			return 0, nil, err
		}
		defer resp.Body.Close()
		// keep a slice of the body for error reporting
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, raw, nil
	})
	if err != nil {
		return fmt.Errorf("sms to %s: %w", to.Phone, err)
	}
	if status >= 300 {
		return fmt.Errorf("sms to %s: gateway status %d: %s", to.Phone, status, respBody)
	}
	return nil
}

func composeSMSBody(msg *Message) string {
	subject := strings.TrimSpace(msg.Subject)
	body := strings.TrimSpace(msg.Body)
	switch {
	case subject == "":
		return body
	case body == "":
		return subject
	}
	// SMS keeps it short: subject plus first line of the body.
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[:i]
	}
	return subject + ": " + body
}
