package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/braddown/kudosity-platform-sub004/internal/models"
	"github.com/braddown/kudosity-platform-sub004/internal/repositories"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// WebhookService ingests gateway callbacks. The raw event is stored before
// any interpretation; once storage succeeds the caller gets an
// acknowledgment no matter what reconciliation does, so the gateway never
// enters a retry storm over our internal failures.
type WebhookService struct {
	eventRepo  repositories.WebhookEventRepository
	reconciler *Reconciler
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(eventRepo repositories.WebhookEventRepository, reconciler *Reconciler) *WebhookService {
	return &WebhookService{
		eventRepo:  eventRepo,
		reconciler: reconciler,
	}
}

// IngestResult reports what happened to one callback.
type IngestResult struct {
	EventType string
	Processed bool
}

// Ingest stores the raw callback, routes it to its reconciliation handler,
// and flips the processed flag only when the handler completed. The only
// error it returns is a storage failure.
func (s *WebhookService) Ingest(ctx context.Context, payload map[string]interface{}) (*IngestResult, error) {
	ev := parseEnvelope(payload)

	record := &models.WebhookEvent{
		EventType:  ev.Type,
		EventID:    ev.EventID,
		MessageID:  firstNonEmpty(ev.MessageID, ev.MessageRef),
		RawPayload: bson.M(payload),
		ReceivedAt: time.Now(),
	}
	if record.EventID == "" {
		record.EventID = uuid.NewString()
	}
	if err := s.eventRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store webhook event: %w", err)
	}

	handled, err := s.route(ctx, ev)
	if err != nil {
		log.Printf("webhook: event %s (%s) processing failed: %v", record.EventID, ev.Type, err)
		return &IngestResult{EventType: ev.Type}, nil
	}
	if !handled {
		log.Printf("webhook: event %s has no handler for type %q", record.EventID, ev.Type)
		return &IngestResult{EventType: ev.Type}, nil
	}

	if err := s.eventRepo.MarkProcessed(ctx, record.ID); err != nil {
		log.Printf("webhook: event %s processed flag update failed: %v", record.EventID, err)
	}

	return &IngestResult{EventType: ev.Type, Processed: true}, nil
}

// route is a flat dispatch over both the compact and the legacy dotted
// event vocabularies. Unknown types are not an error; the event just stays
// unprocessed.
func (s *WebhookService) route(ctx context.Context, ev *normalizedEvent) (bool, error) {
	switch strings.ToLower(ev.Type) {
	case "sms_status":
		return true, s.reconciler.ApplyStatus(ctx, ev)
	case "sms.sent", "sms.delivered", "sms.failed", "sms.bounced":
		if ev.Status == "" {
			ev.Status = strings.TrimPrefix(strings.ToLower(ev.Type), "sms.")
		}
		return true, s.reconciler.ApplyStatus(ctx, ev)
	case "sms_inbound", "sms.inbound":
		return true, s.reconciler.RecordInbound(ctx, ev)
	case "link_hit", "link.clicked":
		return true, s.reconciler.RecordClicks(ctx, ev)
	default:
		return false, nil
	}
}

// Unprocessed lists stored events whose handler never completed, for manual
// re-drive.
func (s *WebhookService) Unprocessed(ctx context.Context, limit int) ([]models.WebhookEvent, error) {
	if limit < 1 {
		limit = 50
	}
	return s.eventRepo.FindUnprocessed(ctx, limit)
}
