package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"starsbot/models"
)

// Endpoint names, also used as metric labels
const (
	EndpointCheck          = "check"
	EndpointGetTasks       = "get_tasks"
	EndpointCheckTask      = "check_task"
	EndpointCompletedTasks = "get_completed_tasks"
)

// Outcome labels reported to the Observer
const (
	OutcomeOK          = "ok"
	OutcomeError       = "error"
	OutcomeBadStatus   = "bad_status"
	OutcomeBadResponse = "bad_response"
)

const defaultLanguage = "ru"

// ErrAPI is returned when the task API answers with an error field
var ErrAPI = errors.New("task api error")

// StatusError is returned for a non 2xx response
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("task api %s returned status %d", e.Endpoint, e.StatusCode)
}

// Observer receives one call per task API request
type Observer interface {
	ObserveOracle(endpoint, outcome string, duration time.Duration)
}

// SubscriptionPrompt is the text the task API shows users who have not
// subscribed yet
type SubscriptionPrompt struct {
	Text          string `json:"text"`
	ButtonBot     string `json:"button_bot"`
	ButtonChannel string `json:"button_channel"`
	ButtonBoost   string `json:"button_boost"`
	ButtonURL     string `json:"button_url"`
	ButtonFP      string `json:"button_fp"`
}

// DefaultPrompt is sent with every subscription check
var DefaultPrompt = SubscriptionPrompt{
	Text:          "📢 Subscribe to our channels to use the bot",
	ButtonBot:     "✅ I subscribed",
	ButtonChannel: "🔗 Subscribe",
	ButtonBoost:   "⚡ Boost",
	ButtonURL:     "🌐 Website",
	ButtonFP:      "🎁 Gift",
}

// Client talks to the Flyer task API
type Client struct {
	baseURL    string
	apiKey     string
	language   string
	prompt     SubscriptionPrompt
	httpClient *http.Client
	observer   Observer
}

// NewClient creates a task API client. observer may be nil.
func NewClient(baseURL, apiKey string, timeout time.Duration, observer Observer) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		language:   defaultLanguage,
		prompt:     DefaultPrompt,
		httpClient: newHTTPClient(timeout),
		observer:   observer,
	}
}

type userRequest struct {
	Key          string              `json:"key"`
	UserID       int64               `json:"user_id"`
	LanguageCode string              `json:"language_code,omitempty"`
	Message      *SubscriptionPrompt `json:"message,omitempty"`
	Limit        int                 `json:"limit,omitempty"`
}

type signatureRequest struct {
	Key       string `json:"key"`
	Signature string `json:"signature"`
}

type apiError struct {
	Error string `json:"error"`
}

// CheckSubscription reports whether the user passed the sponsor subscription gate
func (c *Client) CheckSubscription(ctx context.Context, userID int64) (bool, error) {
	var resp struct {
		apiError
		Skip bool `json:"skip"`
	}
	req := userRequest{
		Key:          c.apiKey,
		UserID:       userID,
		LanguageCode: c.language,
		Message:      &c.prompt,
	}
	if err := c.post(ctx, EndpointCheck, req, &resp, &resp.apiError); err != nil {
		return false, err
	}
	return resp.Skip, nil
}

// ListTasks returns up to limit sponsor tasks offered to the user
func (c *Client) ListTasks(ctx context.Context, userID int64, limit int) ([]models.SponsorTask, error) {
	var resp struct {
		apiError
		Result []models.SponsorTask `json:"result"`
	}
	req := userRequest{
		Key:          c.apiKey,
		UserID:       userID,
		LanguageCode: c.language,
		Limit:        limit,
	}
	if err := c.post(ctx, EndpointGetTasks, req, &resp, &resp.apiError); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// CheckTaskStatus returns the verification state of a task signature
func (c *Client) CheckTaskStatus(ctx context.Context, signature string) (models.TaskStatus, error) {
	var resp struct {
		apiError
		Result *string `json:"result"`
	}
	req := signatureRequest{Key: c.apiKey, Signature: signature}
	if err := c.post(ctx, EndpointCheckTask, req, &resp, &resp.apiError); err != nil {
		return models.TaskStatusUnknown, err
	}
	if resp.Result == nil {
		return models.TaskStatusUnknown, nil
	}
	return models.ParseTaskStatus(*resp.Result), nil
}

// CompletedTaskCount returns how many sponsor tasks the user has completed
func (c *Client) CompletedTaskCount(ctx context.Context, userID int64) (int64, error) {
	var resp struct {
		apiError
		Result *struct {
			CountAllTasks int64 `json:"count_all_tasks"`
		} `json:"result"`
	}
	req := userRequest{Key: c.apiKey, UserID: userID}
	if err := c.post(ctx, EndpointCompletedTasks, req, &resp, &resp.apiError); err != nil {
		return 0, err
	}
	if resp.Result == nil {
		return 0, nil
	}
	return resp.Result.CountAllTasks, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any, out any, apiErr *apiError) error {
	start := time.Now()
	outcome := OutcomeError
	defer func() {
		if c.observer != nil {
			c.observer.ObserveOracle(endpoint, outcome, time.Since(start))
		}
	}()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = OutcomeBadStatus
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		outcome = OutcomeBadResponse
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	if apiErr.Error != "" {
		outcome = OutcomeBadResponse
		return fmt.Errorf("%w: %s: %s", ErrAPI, endpoint, apiErr.Error)
	}

	outcome = OutcomeOK
	return nil
}
