package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"flightwatch-service/internal/domain/entity"
	"flightwatch-service/internal/domain/repository"
	"flightwatch-service/internal/usecase"
	"flightwatch-service/pkg/logger"
	"flightwatch-service/pkg/utils"

	"github.com/go-chi/chi/v5"
)

const (
	maxRequestBody     = 1 << 20
	defaultTickTimeout = 10 * time.Minute
)

// SubscriptionService is the part of the subscription use case the API needs
type SubscriptionService interface {
	Subscribe(ctx context.Context, req usecase.SubscribeRequest) (*entity.FlightRecord, error)
	Unsubscribe(ctx context.Context, flightID, email string) error
	RemoveFlight(ctx context.Context, flightID string) error
}

// TickRunner runs a single reconciliation pass
type TickRunner interface {
	Tick(ctx context.Context) (usecase.TickReport, error)
	Running() bool
}

// Handler serves the subscription and operations endpoints
type Handler struct {
	subscriptions SubscriptionService
	reconciler    TickRunner
	version       string
	logger        logger.Logger

	adminToken  string
	tickCtx     context.Context
	tickTimeout time.Duration
}

// Option configures a Handler
type Option func(*Handler)

// WithAdminToken enables the admin endpoints behind a bearer token.
// Without a token they are not mounted.
func WithAdminToken(token string) Option {
	return func(h *Handler) {
		h.adminToken = token
	}
}

// WithTickContext sets the parent context of manually triggered ticks,
// normally the service lifetime context
func WithTickContext(ctx context.Context) Option {
	return func(h *Handler) {
		h.tickCtx = ctx
	}
}

// WithTickTimeout bounds a manually triggered tick
func WithTickTimeout(timeout time.Duration) Option {
	return func(h *Handler) {
		if timeout > 0 {
			h.tickTimeout = timeout
		}
	}
}

// NewHandler creates a new API handler
func NewHandler(subscriptions SubscriptionService, reconciler TickRunner, version string, logger logger.Logger, opts ...Option) *Handler {
	h := &Handler{
		subscriptions: subscriptions,
		reconciler:    reconciler,
		version:       version,
		logger:        logger,
		tickCtx:       context.Background(),
		tickTimeout:   defaultTickTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes mounts the handler's endpoints on r
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.health)
	r.Post("/subscribe", h.subscribe)
	r.Delete("/subscribe/{flightID}", h.unsubscribe)

	if h.adminToken == "" {
		h.logger.Warn("ADMIN_TOKEN not set, admin endpoints disabled")
		return
	}
	r.Group(func(r chi.Router) {
		r.Use(bearerAuth(h.adminToken))
		r.Post("/reconcile", h.reconcile)
		r.Delete("/flights/{flightID}", h.removeFlight)
	})
}

type subscriberPayload struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	TravelDate  string `json:"travelDate"`
}

type subscribePayload struct {
	FlightNumber  string            `json:"flightNumber"`
	ScheduledTime string            `json:"scheduledTime"`
	EstimatedTime string            `json:"estimatedTime"`
	Terminal      string            `json:"terminal"`
	Gate          string            `json:"gate"`
	TimeZone      string            `json:"timeZone"`
	Subscriber    subscriberPayload `json:"subscriber"`
}

type subscribeResponse struct {
	Message  string `json:"message"`
	FlightID string `json:"flightId"`
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "healthy", "version": h.version}, http.StatusOK)
}

func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	var payload subscribePayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&payload); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	req, err := payload.toRequest()
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	record, err := h.subscriptions.Subscribe(r.Context(), req)
	switch {
	case errors.Is(err, usecase.ErrInvalidEmail):
		writeError(w, "Email is not valid", http.StatusBadRequest)
		return
	case errors.Is(err, usecase.ErrInvalidFlight):
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.logger.Error("Failed to subscribe", "flightNumber", payload.FlightNumber, "error", err)
		writeError(w, "failed to subscribe", http.StatusInternalServerError)
		return
	}

	writeJSON(w, subscribeResponse{Message: "Thanks for subscribing", FlightID: record.ID}, http.StatusOK)
}

func (h *Handler) unsubscribe(w http.ResponseWriter, r *http.Request) {
	flightID := chi.URLParam(r, "flightID")
	email := r.URL.Query().Get("email")
	if strings.TrimSpace(flightID) == "" || strings.TrimSpace(email) == "" {
		writeError(w, "flightID and email are required", http.StatusBadRequest)
		return
	}

	err := h.subscriptions.Unsubscribe(r.Context(), flightID, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, "subscriber not found", http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("Failed to unsubscribe", "flightID", flightID, "error", err)
		writeError(w, "failed to unsubscribe", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// reconcile starts a tick in the background. The tick outlives the request
// so the router timeout cannot cut it short between flights.
func (h *Handler) reconcile(w http.ResponseWriter, _ *http.Request) {
	if h.reconciler.Running() {
		writeError(w, usecase.ErrTickInProgress.Error(), http.StatusConflict)
		return
	}

	go h.runTick()

	writeJSON(w, map[string]string{"message": "reconciliation started"}, http.StatusAccepted)
}

func (h *Handler) runTick() {
	ctx, cancel := context.WithTimeout(h.tickCtx, h.tickTimeout)
	defer cancel()

	report, err := h.reconciler.Tick(ctx)
	switch {
	case errors.Is(err, usecase.ErrTickInProgress):
		h.logger.Info("Manual reconciliation skipped, tick already running")
	case err != nil:
		h.logger.Error("Manual reconciliation failed", "error", err)
	default:
		h.logger.Info("Manual reconciliation finished",
			"eligible", report.Eligible,
			"processed", report.Processed,
			"failed", report.Failed)
	}
}

func (h *Handler) removeFlight(w http.ResponseWriter, r *http.Request) {
	flightID := chi.URLParam(r, "flightID")

	err := h.subscriptions.RemoveFlight(r.Context(), flightID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, "flight not found", http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("Failed to remove flight", "flightID", flightID, "error", err)
		writeError(w, "failed to remove flight", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (p subscribePayload) toRequest() (usecase.SubscribeRequest, error) {
	req := usecase.SubscribeRequest{
		FlightNumber: p.FlightNumber,
		Terminal:     p.Terminal,
		Gate:         p.Gate,
		TimeZone:     p.TimeZone,
		Subscriber: usecase.SubscriberRequest{
			Name:        p.Subscriber.Name,
			Email:       p.Subscriber.Email,
			PhoneNumber: p.Subscriber.PhoneNumber,
		},
	}

	var err error
	if req.ScheduledTime, err = optionalTimestamp(p.ScheduledTime); err != nil {
		return req, errors.New("scheduledTime is not a valid timestamp")
	}
	if req.EstimatedTime, err = optionalTimestamp(p.EstimatedTime); err != nil {
		return req, errors.New("estimatedTime is not a valid timestamp")
	}

	if travel := strings.TrimSpace(p.Subscriber.TravelDate); travel != "" {
		date, err := time.ParseInLocation(time.DateOnly, travel, time.UTC)
		if err != nil {
			date, err = utils.ParseNaiveTimestamp(travel)
		}
		if err != nil {
			return req, errors.New("travelDate is not a valid date")
		}
		req.Subscriber.TravelDate = &date
	}

	return req, nil
}

func optionalTimestamp(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	return utils.ParseNaiveTimestamp(value)
}

func writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, map[string]string{"error": message}, statusCode)
}
