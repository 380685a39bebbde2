package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/braddown/kudosity-platform-sub004/internal/models"
	"github.com/braddown/kudosity-platform-sub004/internal/repositories"
	"github.com/braddown/kudosity-platform-sub004/internal/utils"
)

const defaultDeliveryError = "Message delivery failed"

// Reconciler folds gateway callbacks into the message records the dispatcher
// wrote. Status transitions are monotonic: a message that reached a terminal
// state never regresses, no matter how late or out of order the callbacks
// arrive.
type Reconciler struct {
	messageRepo repositories.MessageRepository
	inboundRepo repositories.InboundMessageRepository
	clickRepo   repositories.LinkClickRepository
}

// NewReconciler creates a new Reconciler
func NewReconciler(
	messageRepo repositories.MessageRepository,
	inboundRepo repositories.InboundMessageRepository,
	clickRepo repositories.LinkClickRepository,
) *Reconciler {
	return &Reconciler{
		messageRepo: messageRepo,
		inboundRepo: inboundRepo,
		clickRepo:   clickRepo,
	}
}

// ApplyStatus moves a message along its lifecycle. Callbacks for messages we
// never recorded are skipped silently; the raw event is already stored for
// inspection.
func (r *Reconciler) ApplyStatus(ctx context.Context, ev *normalizedEvent) error {
	msg, err := r.resolve(ctx, ev)
	if err != nil {
		return err
	}
	if msg == nil {
		log.Printf("reconcile: no message matches id=%q ref=%q, skipping status %q", ev.MessageID, ev.MessageRef, ev.Status)
		return nil
	}

	at := ev.Timestamp
	if at.IsZero() {
		at = time.Now()
	}

	switch normalizeStatus(ev.Status) {
	case models.MessageStatusDelivered:
		if msg.Status == models.MessageStatusDelivered {
			return nil
		}
		if msg.Status.Terminal() {
			log.Printf("reconcile: message %s already %s, ignoring delivered", msg.ID.Hex(), msg.Status)
			return nil
		}
		return r.messageRepo.ApplyStatus(ctx, msg.ID, repositories.MessageStatusUpdate{
			Status:      models.MessageStatusDelivered,
			DeliveredAt: &at,
		})

	case models.MessageStatusFailed, models.MessageStatusBounced:
		target := normalizeStatus(ev.Status)
		if msg.Status == target {
			return nil
		}
		if msg.Status.Terminal() {
			log.Printf("reconcile: message %s already %s, ignoring %s", msg.ID.Hex(), msg.Status, target)
			return nil
		}
		errText := ev.ErrorText
		if errText == "" {
			errText = defaultDeliveryError
		}
		return r.messageRepo.ApplyStatus(ctx, msg.ID, repositories.MessageStatusUpdate{
			Status:    target,
			FailedAt:  &at,
			LastError: errText,
		})

	case models.MessageStatusSent:
		// Only lifts a pending row; a sent confirmation arriving after
		// delivered must not wind the status back.
		if msg.Status != models.MessageStatusPending {
			return nil
		}
		return r.messageRepo.ApplyStatus(ctx, msg.ID, repositories.MessageStatusUpdate{
			Status: models.MessageStatusSent,
			SentAt: &at,
		})

	default:
		log.Printf("reconcile: unknown status %q for message %s, skipping", ev.Status, msg.ID.Hex())
		return nil
	}
}

// RecordInbound stores a subscriber reply with its classified intent. A
// persistence failure here is a processing failure; dropping an opt-out is
// not acceptable.
func (r *Reconciler) RecordInbound(ctx context.Context, ev *normalizedEvent) error {
	at := ev.Timestamp
	if at.IsZero() {
		at = time.Now()
	}

	inbound := &models.InboundMessage{
		MSISDN:           ev.MSISDN,
		Content:          ev.Content,
		Intent:           utils.ClassifyReplyIntent(ev.Content),
		ReplyToMessageID: firstNonEmpty(ev.MessageID, ev.MessageRef),
		ReceivedAt:       at,
	}
	if err := r.inboundRepo.Create(ctx, inbound); err != nil {
		return fmt.Errorf("failed to store inbound message: %w", err)
	}
	return nil
}

// RecordClicks writes one click row per hit and rolls the batch up onto the
// message with a single atomic counter update.
func (r *Reconciler) RecordClicks(ctx context.Context, ev *normalizedEvent) error {
	msg, err := r.resolve(ctx, ev)
	if err != nil {
		return err
	}
	if msg == nil {
		log.Printf("reconcile: no message matches id=%q ref=%q, skipping %d click(s)", ev.MessageID, ev.MessageRef, ev.Hits)
		return nil
	}

	hits := ev.Hits
	if hits < 1 {
		hits = 1
	}
	at := ev.Timestamp
	if at.IsZero() {
		at = time.Now()
	}

	for i := 0; i < hits; i++ {
		click := &models.LinkClick{
			MessageID: msg.ID,
			URL:       ev.URL,
			ClickedAt: at,
			UserAgent: ev.UserAgent,
			IP:        ev.IP,
		}
		if err := r.clickRepo.Create(ctx, click); err != nil {
			log.Printf("reconcile: click row for message %s failed: %v", msg.ID.Hex(), err)
		}
	}

	if err := r.messageRepo.IncrementClicks(ctx, msg.ID, hits, at); err != nil {
		log.Printf("reconcile: click rollup for message %s failed: %v", msg.ID.Hex(), err)
	}
	return nil
}

// resolve finds the message a callback refers to, trying the provider
// message id first and the submission reference second. Different callback
// shapes name the message differently, so the id is also tried as a
// reference before giving up.
func (r *Reconciler) resolve(ctx context.Context, ev *normalizedEvent) (*models.Message, error) {
	if ev.MessageID != "" {
		msg, err := r.messageRepo.FindByProviderID(ctx, ev.MessageID)
		if err != nil {
			return nil, err
		}
		if msg != nil {
			return msg, nil
		}
	}
	if ref := firstNonEmpty(ev.MessageRef, ev.MessageID); ref != "" {
		return r.messageRepo.FindByReference(ctx, ref)
	}
	return nil, nil
}

// normalizeStatus maps the gateway's status words onto the message
// lifecycle. Rejected is an acceptance-time refusal and lands as failed.
func normalizeStatus(status string) models.MessageStatus {
	switch strings.ToLower(status) {
	case "sent", "accepted":
		return models.MessageStatusSent
	case "delivered":
		return models.MessageStatusDelivered
	case "failed", "rejected", "expired":
		return models.MessageStatusFailed
	case "bounced", "hard_bounce":
		return models.MessageStatusBounced
	default:
		return models.MessageStatus(strings.ToLower(status))
	}
}
