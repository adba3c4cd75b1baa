package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"kqs-apply/internal/domain"
	"kqs-apply/pkg/apperror"
	"kqs-apply/pkg/logger"
	"kqs-apply/pkg/security"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

// Applicant-facing messages
const (
	MsgUnavailable = "Applications are temporarily unavailable. Please try again later."
	MsgThrottled   = "Too many applications submitted. Please wait a moment and try again."
	MsgRejected    = "Your application could not be accepted. Please check your details and try again."
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 1 << 20

// Config holds the transport settings for the applications endpoint
type Config struct {
	Endpoint           string        // e.g. https://api.example.org/v1/applications
	Timeout            time.Duration // Per-request timeout
	RatePerMinute      int           // Submissions allowed per applicant email per minute; negative disables
	BreakerMaxFailures int           // Consecutive server failures before the breaker opens
	BreakerOpenTimeout time.Duration // How long the breaker stays open
}

// envelope mirrors the standard JSON response of the society backend
type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     interface{}     `json:"error,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

type receiptData struct {
	ReferenceID string `json:"reference_id"`
}

// ApplicationSubmitter posts applications as multipart/form-data
type ApplicationSubmitter struct {
	endpoint string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
	limiter  *security.SubmitLimiter
}

var _ domain.ApplicationSubmitter = (*ApplicationSubmitter)(nil)

// NewApplicationSubmitter creates the HTTP collaborator. A nil client gets one
// with cfg.Timeout.
func NewApplicationSubmitter(cfg Config, client *http.Client) *ApplicationSubmitter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BreakerMaxFailures <= 0 {
		cfg.BreakerMaxFailures = 3
	}
	if cfg.BreakerOpenTimeout <= 0 {
		cfg.BreakerOpenTimeout = 60 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	maxFailures := uint32(cfg.BreakerMaxFailures)
	st := gobreaker.Settings{
		Name:        "application-submit",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// Rejections by the backend say nothing about its health
		IsSuccessful: func(err error) bool {
			return err == nil || isRejection(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Log.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}

	s := &ApplicationSubmitter{
		endpoint: cfg.Endpoint,
		client:   client,
		breaker:  gobreaker.NewCircuitBreaker(st),
	}
	if cfg.RatePerMinute >= 0 {
		s.limiter = security.NewSubmitLimiter(cfg.RatePerMinute)
	}
	return s
}

func (s *ApplicationSubmitter) SubmitApplication(ctx context.Context, form domain.ApplicationForm) (*domain.SubmissionReceipt, error) {
	var reservation *security.Reservation
	if s.limiter != nil {
		var wait time.Duration
		if reservation, wait = s.limiter.Reserve(form.Email); reservation == nil {
			logger.Log.Warn("Application submission throttled", "retry_after", wait)
			return nil, apperror.TooManyRequests(MsgThrottled)
		}
	}

	key := uuid.NewString()
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.post(ctx, key, form)
	})
	if err != nil {
		// Only applications the backend actually judged count against the applicant
		if !isRejection(err) {
			reservation.Cancel()
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperror.Unavailable(MsgUnavailable, err)
		}
		return nil, err
	}
	return result.(*domain.SubmissionReceipt), nil
}

func (s *ApplicationSubmitter) post(ctx context.Context, key string, form domain.ApplicationForm) (*domain.SubmissionReceipt, error) {
	body, contentType, err := encodeMultipart(form)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to encode application: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, body)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Idempotency-Key", key)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperror.Unavailable(MsgUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperror.Unavailable(MsgUnavailable, fmt.Errorf("failed to read response: %w", err))
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperror.New(resp.StatusCode, messageOr(env.Message, defaultMessage(resp.StatusCode)),
			fmt.Errorf("applications endpoint returned %d", resp.StatusCode))
	}
	if decodeErr != nil {
		return nil, apperror.New(http.StatusBadGateway, MsgUnavailable, fmt.Errorf("invalid response body: %w", decodeErr))
	}
	if !env.Success {
		return nil, apperror.New(http.StatusUnprocessableEntity, messageOr(env.Message, MsgRejected), nil)
	}

	receipt := &domain.SubmissionReceipt{ReferenceID: key, Message: env.Message}
	var data receiptData
	if len(env.Data) > 0 && json.Unmarshal(env.Data, &data) == nil && data.ReferenceID != "" {
		receipt.ReferenceID = data.ReferenceID
	}

	logger.Log.Info("Application accepted by backend", "reference_id", receipt.ReferenceID, "request_id", env.RequestID)
	return receipt, nil
}

// encodeMultipart writes the text fields and, when present, the CV as part "cv"
func encodeMultipart(form domain.ApplicationForm) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{string(domain.FieldName), strings.TrimSpace(form.Name)},
		{string(domain.FieldEmail), strings.TrimSpace(form.Email)},
		{string(domain.FieldSubject), strings.TrimSpace(form.Subject)},
		{string(domain.FieldMessage), form.Message},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	if a := form.Attachment; a != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="cv"; filename="%s"`, escapeQuotes(a.Filename)))
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(a.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// isRejection reports a 4xx answer from the backend
func isRejection(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr) && appErr.Code >= 400 && appErr.Code < 500
}

func messageOr(message, fallback string) string {
	if strings.TrimSpace(message) != "" {
		return message
	}
	return fallback
}

func defaultMessage(status int) string {
	switch {
	case status == http.StatusTooManyRequests:
		return MsgThrottled
	case status >= 500:
		return MsgUnavailable
	default:
		return MsgRejected
	}
}
