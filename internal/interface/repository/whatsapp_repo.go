package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"flightwatch-service/internal/domain/entity"
	"flightwatch-service/internal/domain/repository"
	"flightwatch-service/pkg/logger"
)

const defaultGatewayURL = "https://whatsapp-service.daisi.dev"

// WhatsappConfig holds the messaging gateway settings
type WhatsappConfig struct {
	BaseURL     string
	BearerToken string
	CompanyID   string
	AgentID     string
	Timeout     time.Duration
}

// WhatsappRepository sends short text notifications through the messaging gateway
type WhatsappRepository struct {
	logger      logger.Logger
	baseURL     string
	bearerToken string
	companyID   string
	agentID     string
	client      *http.Client
}

var _ repository.SMSRepository = (*WhatsappRepository)(nil)

// NewWhatsappRepository creates a new gateway client
func NewWhatsappRepository(cfg WhatsappConfig, logger logger.Logger) *WhatsappRepository {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultGatewayURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &WhatsappRepository{
		logger:      logger,
		baseURL:     baseURL,
		bearerToken: cfg.BearerToken,
		companyID:   cfg.CompanyID,
		agentID:     cfg.AgentID,
		client:      &http.Client{Timeout: timeout},
	}
}

// SendSMS delivers a text message to a phone number immediately
func (r *WhatsappRepository) SendSMS(ctx context.Context, to, body string) error {
	msg := entity.SendMailcastMessage{
		CompanyID:   r.companyID,
		AgentID:     r.agentID,
		PhoneNumber: to,
		Message: entity.Message{
			Text: body,
		},
		Type: "text",
	}

	if err := msg.Message.Validate(); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}

	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/mailcast/send-message", r.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+r.bearerToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var response entity.SendMailcastMessageResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&response)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("messaging gateway returned status %d: %s", resp.StatusCode, response.Error.Message)
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if !response.Success {
		return fmt.Errorf("messaging gateway rejected message: %s (code: %s)", response.Error.Message, response.Error.Code)
	}

	r.logger.Info("Text message queued",
		"taskId", response.Data.TaskID,
		"status", response.Data.Status)
	return nil
}
