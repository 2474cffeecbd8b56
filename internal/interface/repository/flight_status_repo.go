package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"flightwatch-service/internal/domain/repository"
	"flightwatch-service/pkg/logger"
)

const maxProviderBody = 4 << 20

// FlightStatusConfig is the provider endpoint and credentials
type FlightStatusConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// HTTPFlightStatusRepository calls the flight status provider over HTTP
type HTTPFlightStatusRepository struct {
	logger  logger.Logger
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ repository.FlightStatusRepository = (*HTTPFlightStatusRepository)(nil)

// NewHTTPFlightStatusRepository creates a provider client. A zero timeout
// falls back to 30 seconds.
func NewHTTPFlightStatusRepository(cfg FlightStatusConfig, logger logger.Logger) *HTTPFlightStatusRepository {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HTTPFlightStatusRepository{
		logger:  logger,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchStatus returns the raw response body for a flight number. Non-2xx
// answers are errors; the body is not interpreted here.
func (r *HTTPFlightStatusRepository) FetchStatus(ctx context.Context, flightNumber string) ([]byte, error) {
	endpoint, err := url.Parse(r.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid provider url: %w", err)
	}

	query := endpoint.Query()
	query.Set("access_key", r.apiKey)
	query.Set("flight_iata", flightNumber)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("flight status provider returned status %d", resp.StatusCode)
	}

	r.logger.Debug("Flight status fetched",
		"flightNumber", flightNumber,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start))
	return body, nil
}
