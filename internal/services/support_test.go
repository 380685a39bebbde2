package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/braddown/kudosity-platform-sub004/internal/models"
	"github.com/braddown/kudosity-platform-sub004/internal/repositories"
	"github.com/braddown/kudosity-platform-sub004/pkg/smsgateway"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes shared by the service tests.

type memCampaignRepo struct {
	mu            sync.Mutex
	campaigns     map[primitive.ObjectID]*models.Campaign
	progressCalls int
	failCreate    bool
}

func newMemCampaignRepo() *memCampaignRepo {
	return &memCampaignRepo{campaigns: make(map[primitive.ObjectID]*models.Campaign)}
}

func (r *memCampaignRepo) Create(ctx context.Context, campaign *models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errors.New("insert failed")
	}
	campaign.ID = primitive.NewObjectID()
	campaign.CreatedAt = time.Now()
	campaign.UpdatedAt = campaign.CreatedAt
	copied := *campaign
	r.campaigns[campaign.ID] = &copied
	return nil
}

func (r *memCampaignRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return nil, errors.New("campaign not found")
	}
	copied := *c
	return &copied, nil
}

func (r *memCampaignRepo) FindRecent(ctx context.Context, limit int) ([]models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Campaign
	for _, c := range r.campaigns {
		out = append(out, *c)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memCampaignRepo) RecordProgress(ctx context.Context, id primitive.ObjectID, progress, sentDelta, failedDelta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return errors.New("campaign not found")
	}
	r.progressCalls++
	c.Progress = progress
	c.SentCount += sentDelta
	c.FailedCount += failedDelta
	return nil
}

func (r *memCampaignRepo) Complete(ctx context.Context, id primitive.ObjectID, final repositories.CampaignCompletion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return errors.New("campaign not found")
	}
	c.Status = models.CampaignStatusCompleted
	c.CompletedAt = &final.CompletedAt
	c.DurationSeconds = final.DurationSeconds
	c.AverageRetries = final.AverageRetries
	return nil
}

func (r *memCampaignRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.campaigns)), nil
}

type memMessageRepo struct {
	mu       sync.Mutex
	messages []*models.Message
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{}
}

func (r *memMessageRepo) seed(msg *models.Message) *models.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	r.messages = append(r.messages, msg)
	return msg
}

func (r *memMessageRepo) Create(ctx context.Context, message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	message.ID = primitive.NewObjectID()
	message.CreatedAt = time.Now()
	message.UpdatedAt = message.CreatedAt
	copied := *message
	r.messages = append(r.messages, &copied)
	return nil
}

func (r *memMessageRepo) Update(ctx context.Context, message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.messages {
		if m.ID == message.ID {
			copied := *message
			r.messages[i] = &copied
			return nil
		}
	}
	return errors.New("message not found")
}

func (r *memMessageRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			copied := *m
			return &copied, nil
		}
	}
	return nil, errors.New("message not found")
}

func (r *memMessageRepo) FindByProviderID(ctx context.Context, providerID string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.MessageID == providerID {
			copied := *m
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memMessageRepo) FindByReference(ctx context.Context, ref string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.MessageRef == ref {
			copied := *m
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memMessageRepo) FindByCampaignID(ctx context.Context, campaignID primitive.ObjectID, page, limit int) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Message
	for _, m := range r.messages {
		if m.CampaignID == campaignID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMessageRepo) UpsertByProviderID(ctx context.Context, message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.messages {
		if m.MessageID == message.MessageID {
			message.ID = m.ID
			copied := *message
			r.messages[i] = &copied
			return nil
		}
	}
	message.ID = primitive.NewObjectID()
	copied := *message
	r.messages = append(r.messages, &copied)
	return nil
}

func (r *memMessageRepo) ApplyStatus(ctx context.Context, id primitive.ObjectID, update repositories.MessageStatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID != id {
			continue
		}
		m.Status = update.Status
		if update.SentAt != nil {
			m.SentAt = update.SentAt
		}
		if update.DeliveredAt != nil {
			m.DeliveredAt = update.DeliveredAt
		}
		if update.FailedAt != nil {
			m.FailedAt = update.FailedAt
		}
		if update.LastError != "" {
			m.LastError = update.LastError
		}
		return nil
	}
	return errors.New("message not found")
}

func (r *memMessageRepo) IncrementClicks(ctx context.Context, id primitive.ObjectID, hits int, clickedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID != id {
			continue
		}
		m.ClickCount += hits
		if m.FirstClickedAt == nil || clickedAt.Before(*m.FirstClickedAt) {
			at := clickedAt
			m.FirstClickedAt = &at
		}
		at := clickedAt
		m.LastClickedAt = &at
		return nil
	}
	return errors.New("message not found")
}

func (r *memMessageRepo) byMSISDN(msisdn string) *models.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.MSISDN == msisdn {
			copied := *m
			return &copied
		}
	}
	return nil
}

func (r *memMessageRepo) all() []models.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Message, len(r.messages))
	for i, m := range r.messages {
		out[i] = *m
	}
	return out
}

type memEventRepo struct {
	mu         sync.Mutex
	events     []*models.WebhookEvent
	failCreate bool
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{}
}

func (r *memEventRepo) Create(ctx context.Context, event *models.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errors.New("insert failed")
	}
	event.ID = primitive.NewObjectID()
	copied := *event
	r.events = append(r.events, &copied)
	return nil
}

func (r *memEventRepo) MarkProcessed(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.ID == id {
			e.Processed = true
			return nil
		}
	}
	return errors.New("event not found")
}

func (r *memEventRepo) FindUnprocessed(ctx context.Context, limit int) ([]models.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.WebhookEvent
	for _, e := range r.events {
		if !e.Processed {
			out = append(out, *e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

type memClickRepo struct {
	mu     sync.Mutex
	clicks []*models.LinkClick
}

func newMemClickRepo() *memClickRepo {
	return &memClickRepo{}
}

func (r *memClickRepo) Create(ctx context.Context, click *models.LinkClick) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	click.ID = primitive.NewObjectID()
	copied := *click
	r.clicks = append(r.clicks, &copied)
	return nil
}

func (r *memClickRepo) CountByMessageID(ctx context.Context, messageID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.clicks {
		if c.MessageID == messageID {
			n++
		}
	}
	return n, nil
}

type memInboundRepo struct {
	mu         sync.Mutex
	inbound    []*models.InboundMessage
	failCreate bool
}

func newMemInboundRepo() *memInboundRepo {
	return &memInboundRepo{}
}

func (r *memInboundRepo) Create(ctx context.Context, inbound *models.InboundMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errors.New("insert failed")
	}
	inbound.ID = primitive.NewObjectID()
	copied := *inbound
	r.inbound = append(r.inbound, &copied)
	return nil
}

func (r *memInboundRepo) FindByMSISDN(ctx context.Context, msisdn string, page, limit int) ([]models.InboundMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.InboundMessage
	for _, in := range r.inbound {
		if in.MSISDN == msisdn {
			out = append(out, *in)
		}
	}
	return out, nil
}

// scriptedGateway serves queued outcomes per recipient and succeeds with a
// synthetic receipt once the script runs out.
type scriptedGateway struct {
	mu      sync.Mutex
	scripts map[string][]error
	calls   map[string]int
	onSend  func(msisdn string)
}

func newScriptedGateway() *scriptedGateway {
	return &scriptedGateway{
		scripts: make(map[string][]error),
		calls:   make(map[string]int),
	}
}

func (g *scriptedGateway) script(msisdn string, outcomes ...error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scripts[msisdn] = append(g.scripts[msisdn], outcomes...)
}

func (g *scriptedGateway) callCount(msisdn string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[msisdn]
}

func (g *scriptedGateway) Send(ctx context.Context, msisdn, body, sender string) (*smsgateway.SendReceipt, error) {
	g.mu.Lock()
	g.calls[msisdn]++
	call := g.calls[msisdn]
	var next error
	if queue := g.scripts[msisdn]; len(queue) > 0 {
		next = queue[0]
		g.scripts[msisdn] = queue[1:]
	}
	hook := g.onSend
	g.mu.Unlock()

	if hook != nil {
		hook(msisdn)
	}
	if next != nil {
		return nil, next
	}
	return &smsgateway.SendReceipt{
		MessageID: fmt.Sprintf("MSG-%s-%d", msisdn, call),
		Segments:  1,
		Cost:      0.05,
	}, nil
}

func throttleErr() error {
	return &smsgateway.APIError{StatusCode: 429, Body: "too many requests"}
}

func invalidNumberErr() error {
	return &smsgateway.APIError{StatusCode: 400, Body: "invalid recipient"}
}
