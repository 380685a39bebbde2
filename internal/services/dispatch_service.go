package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/braddown/kudosity-platform-sub004/internal/config"
	"github.com/braddown/kudosity-platform-sub004/internal/models"
	"github.com/braddown/kudosity-platform-sub004/internal/repositories"
	"github.com/braddown/kudosity-platform-sub004/internal/utils"
	"github.com/braddown/kudosity-platform-sub004/pkg/smsgateway"
	"golang.org/x/sync/errgroup"
)

// DispatchRequest is one bulk-send request.
type DispatchRequest struct {
	CampaignName string
	Recipients   []string
	Message      string
	Sender       string
	TrackLinks   bool
	Audiences    []string
	CreatedBy    string
}

// DispatchStats are the final figures of a completed dispatch run.
type DispatchStats struct {
	Total          int     `json:"total"`
	Sent           int     `json:"sent"`
	Failed         int     `json:"failed"`
	Duration       float64 `json:"duration"`
	AverageRetries float64 `json:"averageRetries"`
}

// DispatchService fans a campaign out to the gateway batch by batch: every
// recipient in a batch is sent concurrently through the retry controller,
// batches are paced to the throughput ceiling, and campaign counters are
// persisted after each batch so pollers see live progress.
type DispatchService struct {
	campaignRepo repositories.CampaignRepository
	messageRepo  repositories.MessageRepository
	pacer        *batchPacer
	retrier      *retrier
	unitPrice    float64
	countryCode  string
}

// NewDispatchService creates a new DispatchService
func NewDispatchService(
	campaignRepo repositories.CampaignRepository,
	messageRepo repositories.MessageRepository,
	gateway smsgateway.Gateway,
	cfg *config.Config,
) *DispatchService {
	return &DispatchService{
		campaignRepo: campaignRepo,
		messageRepo:  messageRepo,
		pacer:        newBatchPacer(cfg.Dispatch.BatchSize, cfg.Dispatch.RatePerSecond),
		retrier:      newRetrier(gateway, cfg.Dispatch.MaxAttempts, time.Duration(cfg.Dispatch.RetryBackoffMS)*time.Millisecond),
		unitPrice:    cfg.Dispatch.UnitPrice,
		countryCode:  cfg.Dispatch.CountryCode,
	}
}

// Dispatch runs a whole campaign. Only the initial campaign insert is fatal;
// per-recipient failures land in the stats and progress writes are
// best-effort. Cancellation is honored between batches, never mid-batch.
func (s *DispatchService) Dispatch(ctx context.Context, req DispatchRequest) (*models.Campaign, *DispatchStats, error) {
	if len(req.Recipients) == 0 {
		return nil, nil, errors.New("recipients are required")
	}
	if req.Message == "" {
		return nil, nil, errors.New("message is required")
	}

	recipients := s.normalizeRecipients(req.Recipients)

	name := req.CampaignName
	if name == "" {
		name = "Campaign " + time.Now().Format("2006-01-02 15:04:05")
	}

	campaign := &models.Campaign{
		Name:            name,
		Message:         req.Message,
		Sender:          req.Sender,
		TrackLinks:      req.TrackLinks,
		Audiences:       req.Audiences,
		TotalRecipients: len(recipients),
		Status:          models.CampaignStatusProcessing,
		StartedAt:       time.Now(),
		CreatedBy:       req.CreatedBy,
	}
	if err := s.campaignRepo.Create(ctx, campaign); err != nil {
		return nil, nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	started := time.Now()
	var results []SendResult
	attempted := 0

	for _, batch := range s.pacer.Batches(recipients) {
		if err := ctx.Err(); err != nil {
			log.Printf("dispatch: campaign %s cancelled after %d of %d recipients", campaign.ID.Hex(), attempted, len(recipients))
			break
		}

		batchStarted := s.pacer.now()
		batchResults := s.sendBatch(ctx, batch, req)
		results = append(results, batchResults...)
		attempted += len(batch)

		sent, failed := tally(batchResults)
		progress := attempted * 100 / len(recipients)
		if err := s.campaignRepo.RecordProgress(ctx, campaign.ID, progress, sent, failed); err != nil {
			log.Printf("dispatch: campaign %s progress update failed: %v", campaign.ID.Hex(), err)
		}
		s.recordMessages(ctx, campaign, batchResults)

		s.pacer.Pace(batchStarted)
	}

	stats := s.finalize(ctx, campaign, results, time.Since(started))
	return campaign, stats, nil
}

// sendBatch issues one concurrent send per recipient and waits for all of
// them to settle. Failures are values, not errors, so the group never
// short-circuits.
func (s *DispatchService) sendBatch(ctx context.Context, batch []string, req DispatchRequest) []SendResult {
	results := make([]SendResult, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	for i, msisdn := range batch {
		i, msisdn := i, msisdn
		g.Go(func() error {
			results[i] = s.retrier.Send(gctx, msisdn, req.Message, req.Sender)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// recordMessages appends one message row per settled result. These rows are
// the audit trail and the reconciliation targets for later callbacks, so
// successes are upserted by provider message id. Write failures are logged
// and swallowed; the campaign keeps moving.
func (s *DispatchService) recordMessages(ctx context.Context, campaign *models.Campaign, results []SendResult) {
	now := time.Now()
	for _, res := range results {
		segments := res.Segments
		if segments == 0 {
			segments = utils.CountSegments(campaign.Message)
		}
		cost := res.Cost
		if cost == 0 {
			cost = utils.MessageCost(segments, s.unitPrice)
		}

		msg := &models.Message{
			MSISDN:     res.MSISDN,
			CampaignID: campaign.ID,
			MessageID:  res.MessageID,
			MessageRef: res.MessageRef,
			Content:    campaign.Message,
			Segments:   segments,
			Cost:       cost,
			Attempts:   res.Attempts,
		}

		var err error
		if res.Success {
			sentAt := now
			msg.Status = models.MessageStatusSent
			msg.SentAt = &sentAt
			err = s.messageRepo.UpsertByProviderID(ctx, msg)
		} else {
			failedAt := now
			msg.Status = models.MessageStatusFailed
			msg.FailedAt = &failedAt
			msg.LastError = res.Error
			err = s.messageRepo.Create(ctx, msg)
		}
		if err != nil {
			log.Printf("dispatch: campaign %s message log for %s failed: %v", campaign.ID.Hex(), res.MSISDN, err)
		}
	}
}

func (s *DispatchService) finalize(ctx context.Context, campaign *models.Campaign, results []SendResult, elapsed time.Duration) *DispatchStats {
	sent, failed := tally(results)

	totalAttempts := 0
	for _, res := range results {
		totalAttempts += res.Attempts
	}
	averageRetries := 0.0
	if len(results) > 0 {
		averageRetries = float64(totalAttempts) / float64(len(results))
	}

	completion := repositories.CampaignCompletion{
		CompletedAt:     time.Now(),
		DurationSeconds: elapsed.Seconds(),
		AverageRetries:  averageRetries,
	}
	if err := s.campaignRepo.Complete(ctx, campaign.ID, completion); err != nil {
		log.Printf("dispatch: campaign %s completion update failed: %v", campaign.ID.Hex(), err)
	}

	campaign.Status = models.CampaignStatusCompleted
	campaign.SentCount = sent
	campaign.FailedCount = failed
	campaign.CompletedAt = &completion.CompletedAt
	campaign.DurationSeconds = completion.DurationSeconds
	campaign.AverageRetries = averageRetries

	return &DispatchStats{
		Total:          campaign.TotalRecipients,
		Sent:           sent,
		Failed:         failed,
		Duration:       elapsed.Seconds(),
		AverageRetries: averageRetries,
	}
}

// SendSingle sends one ad-hoc message outside any campaign: the message row
// is created pending first, then updated with the settled outcome.
func (s *DispatchService) SendSingle(ctx context.Context, recipient, body, sender string) (*models.Message, error) {
	if recipient == "" {
		return nil, errors.New("recipient is required")
	}
	if body == "" {
		return nil, errors.New("message is required")
	}

	msisdn, err := utils.NormalizeMSISDN(recipient, s.countryCode)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}

	msg := &models.Message{
		MSISDN:  msisdn,
		Content: body,
		Status:  models.MessageStatusPending,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	res := s.retrier.Send(ctx, msisdn, body, sender)
	now := time.Now()
	msg.Attempts = res.Attempts
	if res.Success {
		msg.Status = models.MessageStatusSent
		msg.MessageID = res.MessageID
		msg.MessageRef = res.MessageRef
		msg.Segments = res.Segments
		msg.Cost = res.Cost
		msg.SentAt = &now
	} else {
		msg.Status = models.MessageStatusFailed
		msg.LastError = res.Error
		msg.FailedAt = &now
	}
	if err := s.messageRepo.Update(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to update message: %w", err)
	}

	return msg, nil
}

// normalizeRecipients normalizes what it can and passes the rest through
// untouched; the gateway is the final judge of a number it cannot parse.
func (s *DispatchService) normalizeRecipients(recipients []string) []string {
	normalized := make([]string, len(recipients))
	for i, r := range recipients {
		if n, err := utils.NormalizeMSISDN(r, s.countryCode); err == nil {
			normalized[i] = n
		} else {
			normalized[i] = r
		}
	}
	return normalized
}

func tally(results []SendResult) (sent, failed int) {
	for _, res := range results {
		if res.Success {
			sent++
		} else {
			failed++
		}
	}
	return sent, failed
}
