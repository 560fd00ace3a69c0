package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/survey-scoring-server/internal/domain"
)

// Message is a single chat message in the completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator produces a narrative report from scored results.
type Generator interface {
	GenerateReport(ctx context.Context, patientID string, results []*domain.ScoreResult) (string, error)
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Client calls an OpenAI-compatible chat completion endpoint. Calls go
// through a rate limiter and a circuit breaker so a degraded upstream
// never stalls survey submission.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
	config     domain.ReportConfig
	log        *logrus.Logger
}

// NewClient creates a report generation client.
func NewClient(config domain.ReportConfig, logger *logrus.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ReportGeneration",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		breaker:    breaker,
		limiter:    rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		config:     config,
		log:        logger,
	}
}

// GenerateReport requests a narrative report for the given results.
func (c *Client) GenerateReport(ctx context.Context, patientID string, results []*domain.ScoreResult) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.complete(ctx, BuildPrompt(patientID, results))
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			return "", fmt.Errorf("report service unavailable (circuit breaker open)")
		}
		return "", fmt.Errorf("generating report: %w", err)
	}

	return result.(string), nil
}

func (c *Client) complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.config.Model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling report service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("report service returned %d: %s", resp.StatusCode, payload)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("report service returned no choices")
	}

	return chat.Choices[0].Message.Content, nil
}

// Service wraps a Generator with the fallback path: when generation is
// disabled or fails, submissions still get a plain-text summary.
type Service struct {
	generator Generator
	enabled   bool
	log       *logrus.Logger
}

// NewService creates a report service. A nil generator or disabled config
// means every report uses the fallback.
func NewService(config domain.ReportConfig, logger *logrus.Logger) *Service {
	svc := &Service{enabled: config.Enabled, log: logger}
	if config.Enabled {
		svc.generator = NewClient(config, logger)
	}
	return svc
}

// NewServiceWithGenerator creates a report service over a custom generator.
func NewServiceWithGenerator(generator Generator, logger *logrus.Logger) *Service {
	return &Service{generator: generator, enabled: generator != nil, log: logger}
}

// GenerateReport returns a narrative report, falling back to the plain
// summary when generation is unavailable.
func (s *Service) GenerateReport(ctx context.Context, patientID string, results []*domain.ScoreResult) string {
	if !s.enabled || s.generator == nil {
		return FallbackReport(patientID, results)
	}

	report, err := s.generator.GenerateReport(ctx, patientID, results)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"patient_id": patientID,
			"error":      err,
		}).Warn("Report generation failed, using fallback")
		return FallbackReport(patientID, results)
	}
	return report
}
