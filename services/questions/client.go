// Package questions forwards speaker questions to the conference backend.
package questions

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"

	coreconfig "github.com/m3rciful/confbot/core/config"
	"github.com/m3rciful/confbot/core/logger"
	"github.com/m3rciful/confbot/services/serviceerr"
	"log/slog"
)

const serviceName = "questions"

// Question is the intake payload. Field names match the backend API.
type Question struct {
	Name     string `json:"name"`
	Question string `json:"questions"`
	Hall     string `json:"hall"`
}

// Client submits speaker questions with a single POST per call, no retries.
type Client struct {
	url    string
	client *http.Client
}

// New builds a Client from the conference configuration section.
func New(cfg coreconfig.ConferenceConfig) *Client {
	return &Client{
		url: cfg.QuestionsURL,
		client: &http.Client{
			Timeout: cfg.Timeout(),
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
				TLSHandshakeTimeout: 5 * time.Second,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     30 * time.Second,
			},
		},
	}
}

// Submit delivers one question to the intake endpoint. Any non-2xx status
// or network failure surfaces as a transport-class service error.
func (c *Client) Submit(ctx context.Context, q Question) error {
	start := time.Now()
	body, err := json.Marshal(q)
	if err != nil {
		return serviceerr.Transport(serviceName, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return serviceerr.Transport(serviceName, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		logFailure(ctx, q.Hall, err, start)
		return serviceerr.Transport(serviceName, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := serviceerr.Transportf(serviceName, "unexpected status %s", resp.Status)
		logger.Error(ctx, "service.questions", "question.submit",
			slog.String("status", "fail"),
			slog.String("hall", q.Hall),
			slog.Int("http_code", resp.StatusCode),
			slog.Duration("duration", logger.Took(start)),
		)
		return serr
	}

	logger.Info(ctx, "service.questions", "question.submit",
		slog.String("status", "ok"),
		slog.String("hall", q.Hall),
		slog.Int("http_code", resp.StatusCode),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

func logFailure(ctx context.Context, hall string, err error, start time.Time) {
	logger.Error(ctx, "service.questions", "question.submit",
		slog.String("status", "fail"),
		slog.String("hall", hall),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		slog.Duration("duration", logger.Took(start)),
	)
}
