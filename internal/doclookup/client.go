package doclookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"movitex/internal/shared/config"
	"movitex/internal/shared/constants"
	"movitex/pkg/cache"
	"movitex/pkg/logger"
)

var documentPattern = regexp.MustCompile(`^\d{8}$`)

// ValidDocument reports whether s is a well-formed national id (8 digits).
func ValidDocument(s string) bool {
	return documentPattern.MatchString(s)
}

var (
	ErrInvalidDocument = errors.New("document number must be exactly 8 digits")
	ErrUnavailable     = errors.New("document lookup service unavailable")
)

// Result mirrors the lookup microservice response. Success is false for
// an unknown document.
type Result struct {
	Success   bool   `json:"success"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Message   string `json:"message,omitempty"`
}

type Client interface {
	Lookup(ctx context.Context, documentNumber string) (*Result, error)
}

type client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	cache      cache.Service
	cacheTTL   time.Duration
}

// NewClient builds the lookup client. c may be nil to disable caching.
func NewClient(cfg config.DocumentLookupConfig, c cache.Service, cacheTTL time.Duration) Client {
	st := gobreaker.Settings{
		Name:        "document-lookup",
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.GetDefault().Warn("circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    gobreaker.NewCircuitBreaker(st),
		cache:      c,
		cacheTTL:   cacheTTL,
	}
}

func (c *client) Lookup(ctx context.Context, documentNumber string) (*Result, error) {
	if !ValidDocument(documentNumber) {
		return nil, ErrInvalidDocument
	}

	cacheKey := constants.BuildDocumentLookupKey(documentNumber)
	if c.cache != nil {
		var cached Result
		if err := c.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, documentNumber)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}

	res := out.(*Result)
	// Only positive answers are cached; a miss may be registered later.
	if res.Success && c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, res, c.cacheTTL); err != nil {
			logger.GetDefault().WithError(err).Warn("document lookup cache write failed")
		}
	}
	return res, nil
}

func (c *client) fetch(ctx context.Context, documentNumber string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/dni/"+documentNumber, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &Result{Success: false, Message: "document not found"}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("lookup service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("failed to decode lookup response: %w", err)
	}
	if res.Success && res.FirstName == "" && res.LastName == "" {
		res.Success = false
	}
	return &res, nil
}
