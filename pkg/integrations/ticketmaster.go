package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yair/eventfinder/pkg/domain"
	"go.uber.org/zap"
)

const (
	DefaultTicketmasterBaseURL = "https://app.ticketmaster.com/discovery/v2"

	maxResponseBytes = 4 << 20
)

type TicketmasterClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

type TicketmasterConfig struct {
	APIKey  string        // Ticketmaster Discovery API key
	BaseURL string        // defaults to DefaultTicketmasterBaseURL
	Timeout time.Duration // defaults to 10s
	Logger  *zap.Logger
}

func NewTicketmasterClient(config TicketmasterConfig) (*TicketmasterClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("ticketmaster API key is required")
	}

	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultTicketmasterBaseURL
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TicketmasterClient{
		baseURL:    baseURL,
		apiKey:     config.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("ticketmaster"),
	}, nil
}

type ticketmasterEventsResponse struct {
	Embedded *struct {
		Events []domain.Event `json:"events"`
	} `json:"_embedded"`
	Page *domain.PageInfo `json:"page"`
}

func (c *TicketmasterClient) Search(ctx context.Context, query domain.SearchQuery) (*domain.PageResult, error) {
	query = query.Normalized()

	q := url.Values{}
	q.Set("page", strconv.Itoa(query.Page))
	q.Set("size", strconv.Itoa(query.Size))
	setIfPresent(q, "keyword", query.Keyword)
	setIfPresent(q, "city", query.City)
	setIfPresent(q, "startDateTime", query.StartDateTime)
	setIfPresent(q, "endDateTime", query.EndDateTime)
	setIfPresent(q, "classificationName", query.ClassificationName)

	status, body, err := c.get(ctx, "search events", "/events.json", q)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		c.logger.Warn("search failed", zap.Int("status", status))
		return nil, &domain.UpstreamError{StatusCode: status, Body: string(body)}
	}

	return decodeEventsPage(body)
}

func (c *TicketmasterClient) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ValidationError{Field: "id", Message: "event id is required"}
	}

	path := fmt.Sprintf("/events/%s.json", url.PathEscape(id))
	status, body, err := c.get(ctx, "get event", path, url.Values{})
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, domain.ErrEventNotFound
	}
	if !isSuccess(status) {
		c.logger.Warn("get event failed", zap.String("event_id", id), zap.Int("status", status))
		return nil, &domain.UpstreamError{StatusCode: status, Body: string(body)}
	}

	return decodeEvent(body)
}

func (c *TicketmasterClient) SearchPopular(ctx context.Context) (*domain.PageResult, error) {
	return c.Search(ctx, domain.SearchQuery{Size: domain.PopularPageSize})
}

// get performs the request and returns the status and body. The error is
// always a TransportError: status handling is left to the caller.
func (c *TicketmasterClient) get(ctx context.Context, op, path string, q url.Values) (int, []byte, error) {
	q.Set("apikey", c.apiKey)
	q.Set("locale", "*")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, nil, &domain.TransportError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("op", op), zap.Error(err))
		return 0, nil, &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, &domain.TransportError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("upstream call",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	return resp.StatusCode, body, nil
}

func decodeEventsPage(body []byte) (*domain.PageResult, error) {
	var eventsResp ticketmasterEventsResponse
	if err := json.Unmarshal(body, &eventsResp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	if eventsResp.Embedded == nil || eventsResp.Embedded.Events == nil {
		return domain.EmptyPage(), nil
	}
	if eventsResp.Page == nil {
		return nil, fmt.Errorf("%w: page metadata missing", domain.ErrMalformedResponse)
	}
	for i, event := range eventsResp.Embedded.Events {
		if event.ID == "" {
			return nil, fmt.Errorf("%w: event at index %d has no id", domain.ErrMalformedResponse, i)
		}
	}

	return &domain.PageResult{
		Events: eventsResp.Embedded.Events,
		Page:   *eventsResp.Page,
	}, nil
}

func decodeEvent(body []byte) (*domain.Event, error) {
	var event *domain.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if event == nil || event.ID == "" {
		return nil, fmt.Errorf("%w: event has no id", domain.ErrMalformedResponse)
	}
	return event, nil
}

func setIfPresent(q url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		q.Set(key, value)
	}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// IsCanceled reports whether err stems from the caller giving up rather
// than from the upstream.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
