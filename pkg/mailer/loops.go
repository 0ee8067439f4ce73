package mailer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	errorvalues "github.com/limbo/placebetween/internal/error_values"
)

const (
	DefaultBaseURL = "https://app.loops.so/api/v1"
	defaultTimeout = 10 * time.Second
)

type LoopsOpts struct {
	APIKey          string
	TransactionalID string
	AppURL          string
	BaseURL         string
	Timeout         time.Duration
}

// LoopsMailer sends the inactivity nudge through Loops transactional API.
type LoopsMailer struct {
	opts       LoopsOpts
	httpClient *http.Client
}

type transactionalRequest struct {
	TransactionalID string            `json:"transactionalId"`
	Email           string            `json:"email"`
	DataVariables   map[string]string `json:"dataVariables"`
}

func NewLoopsMailer(opts LoopsOpts) *LoopsMailer {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &LoopsMailer{
		opts: opts,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

func (m *LoopsMailer) Send(ctx context.Context, email, username string) error {
	if m.opts.APIKey == "" || m.opts.TransactionalID == "" {
		return errorvalues.ErrMailerNotConfigured
	}
	body, err := sonic.ConfigStd.Marshal(transactionalRequest{
		TransactionalID: m.opts.TransactionalID,
		Email:           email,
		DataVariables: map[string]string{
			"username": username,
			"url_app":  m.opts.AppURL,
		},
	})
	if err != nil {
		return errors.New("marshaling mail payload error: " + err.Error())
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.opts.BaseURL+"/transactional", bytes.NewReader(body))
	if err != nil {
		return errors.New("creating mail request error: " + err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+m.opts.APIKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return errors.New("sending mail error: " + err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errors.New("loops error " + strconv.Itoa(resp.StatusCode) + ": " + string(text))
	}
	return nil
}
