package up

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/baely/mirror/internal/common/errors"
	commonHttp "github.com/baely/mirror/internal/common/http"
)

// EventHandler processes transaction events delivered by the webhook.
//
// A returned error signals that the event could not be processed and should
// be redelivered by Up; handlers are expected to absorb per-transaction
// failures that redelivery cannot fix.
type EventHandler interface {
	HandleCreated(ctx context.Context, tx TransactionResource) error
	HandleSettled(ctx context.Context, tx TransactionResource) error
	HandleDeleted(ctx context.Context, transactionID string) error
}

// WebhookService handles webhook events from Up Banking
type WebhookService struct {
	upClient *Client
	secret   []byte
	router   chi.Router
	handler  EventHandler
	logger   *slog.Logger
}

// WebhookConfig contains configuration for the WebhookService
type WebhookConfig struct {
	Client  *Client
	Secret  string
	Handler EventHandler
	Logger  *slog.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(cfg *WebhookConfig) *WebhookService {
	service := &WebhookService{
		upClient: cfg.Client,
		secret:   []byte(cfg.Secret),
		handler:  cfg.Handler,
		logger:   cfg.Logger,
	}

	// Setup router with standard middleware
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Register routes
	r.Post("/up/event", service.handleWebhook)
	r.Post("/event", service.handleWebhook)

	service.router = r

	return service
}

// Chi returns the router for this service
func (s *WebhookService) Chi() chi.Router {
	return s.router
}

// ValidateSignature reports whether signature is a valid hex HMAC-SHA256 of
// payload under secret
func ValidateSignature(secret, payload []byte, signature string) bool {
	sig, _ := hex.DecodeString(signature)
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hmac.Equal(sig, mac.Sum(nil))
}

// handleWebhook processes incoming webhook requests. The event is handled to
// completion before the response is written: Up owns redelivery, so an ack
// must mean the outcome is known.
func (s *WebhookService) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Error("Failed to read request body", "error", err)
		commonHttp.Error(w, errors.Wrap(err, "failed to read request body"), http.StatusInternalServerError)
		return
	}

	signature := r.Header.Get("X-Up-Authenticity-Signature")
	if !ValidateSignature(s.secret, body, signature) {
		s.logger.Warn("Invalid webhook signature", "signature", signature)
		commonHttp.Error(w, errors.ErrUnauthorized, http.StatusForbidden)
		return
	}

	var event WebhookEventCallback
	if err := json.Unmarshal(body, &event); err != nil {
		s.logger.Error("Failed to parse webhook event", "error", err)
		commonHttp.Error(w, errors.ErrInvalidInput, http.StatusBadRequest)
		return
	}

	if event.Data.Type != "webhook-events" {
		s.logger.Error("Unexpected resource type", "type", event.Data.Type)
		commonHttp.Error(w, errors.ErrInvalidInput, http.StatusBadRequest)
		return
	}

	eventType := event.Data.Attributes.EventType
	s.logger.Info("Processing event", "type", eventType, "id", event.Data.ID)

	switch eventType {
	case EventPing:
		commonHttp.Success(w, map[string]string{"status": "PONG"})

	case EventTransactionCreated, EventTransactionSettled:
		s.handleTransactionEvent(w, r, eventType, event)

	case EventTransactionDeleted:
		id, ok := transactionID(event)
		if !ok {
			s.logger.Error("Delete payload missing transaction ID")
			commonHttp.Error(w, errors.ErrInvalidInput, http.StatusBadRequest)
			return
		}

		if err := s.handler.HandleDeleted(r.Context(), id); err != nil {
			s.logger.Error("Failed to process delete event", "id", id, "error", err)
			commonHttp.HandleError(w, err)
			return
		}
		commonHttp.Success(w, map[string]string{"status": "accepted"})

	default:
		s.logger.Error("Unexpected event type", "type", eventType)
		commonHttp.Error(w, errors.ErrInvalidInput, http.StatusBadRequest)
	}
}

// handleTransactionEvent fetches the full transaction and dispatches it
func (s *WebhookService) handleTransactionEvent(w http.ResponseWriter, r *http.Request, eventType string, event WebhookEventCallback) {
	id, ok := transactionID(event)
	if !ok {
		s.logger.Error("Event payload missing transaction ID", "type", eventType)
		commonHttp.Error(w, errors.ErrInvalidInput, http.StatusBadRequest)
		return
	}

	transaction, err := s.upClient.GetTransaction(r.Context(), id)
	if err != nil {
		s.logger.Error("Failed to retrieve transaction", "id", id, "error", err)
		commonHttp.HandleError(w, err)
		return
	}

	if eventType == EventTransactionSettled {
		err = s.handler.HandleSettled(r.Context(), transaction)
	} else {
		err = s.handler.HandleCreated(r.Context(), transaction)
	}
	if err != nil {
		s.logger.Error("Failed to process transaction event", "type", eventType, "id", id, "error", err)
		commonHttp.HandleError(w, err)
		return
	}

	commonHttp.Success(w, map[string]string{"status": "accepted"})
}

func transactionID(event WebhookEventCallback) (string, bool) {
	rel := event.Data.Relationships.Transaction
	if rel == nil || rel.Data == nil || rel.Data.ID == "" {
		return "", false
	}
	return rel.Data.ID, true
}
