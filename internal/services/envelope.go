package services

import (
	"strconv"
	"time"
)

// Canonical event types produced by the envelope parsers. The router also
// accepts the older dotted vocabulary (sms.sent, link.clicked, ...) that was
// in flight when the gateway migrated to the compact names.
const (
	EventTypeStatus       = "SMS_STATUS"
	EventTypeInbound      = "SMS_INBOUND"
	EventTypeLinkHit      = "LINK_HIT"
	EventTypeUnrecognized = "UNRECOGNIZED"
)

// normalizedEvent is the single internal record every envelope variant
// parses into. Fields irrelevant to a given event family stay zero.
type normalizedEvent struct {
	Type       string
	EventID    string
	MessageID  string
	MessageRef string
	Status     string
	ErrorText  string
	MSISDN     string
	Content    string
	URL        string
	Hits       int
	UserAgent  string
	IP         string
	Timestamp  time.Time
}

type envelopeParser func(eventType string, payload map[string]interface{}) *normalizedEvent

// parseEnvelope tries the known envelope shapes in priority order and falls
// through to an explicit unrecognized event rather than probing fields
// blindly.
func parseEnvelope(payload map[string]interface{}) *normalizedEvent {
	eventType := stringField(payload, "event", "event_type", "type")

	for _, parse := range []envelopeParser{
		parseStatusEnvelope,
		parseInboundEnvelope,
		parseLinkHitEnvelope,
		parseLegacyFlat,
	} {
		if ev := parse(eventType, payload); ev != nil {
			ev.EventID = stringField(payload, "event_id", "id")
			return ev
		}
	}

	return &normalizedEvent{
		Type:    EventTypeUnrecognized,
		EventID: stringField(payload, "event_id", "id"),
	}
}

// parseStatusEnvelope handles the compact delivery-status shape:
// {"event": "SMS_STATUS", "status": {"status": "...", "message_id": ...}}
func parseStatusEnvelope(eventType string, payload map[string]interface{}) *normalizedEvent {
	sub := subMap(payload, "status")
	if sub == nil {
		return nil
	}
	if eventType == "" {
		eventType = EventTypeStatus
	}
	return &normalizedEvent{
		Type:       eventType,
		Status:     stringField(sub, "status", "state"),
		MessageID:  stringField(sub, "message_id", "id"),
		MessageRef: stringField(sub, "message_ref", "ref"),
		ErrorText:  stringField(sub, "error", "reason"),
		Timestamp:  timeField(sub, "timestamp", "updated_at"),
	}
}

// parseInboundEnvelope handles the inbound-reply shape:
// {"event": "SMS_INBOUND", "mo": {"msisdn": ..., "message": ...}}
func parseInboundEnvelope(eventType string, payload map[string]interface{}) *normalizedEvent {
	sub := subMap(payload, "mo")
	if sub == nil {
		return nil
	}
	if eventType == "" {
		eventType = EventTypeInbound
	}
	return &normalizedEvent{
		Type:      eventType,
		MSISDN:    stringField(sub, "msisdn", "from"),
		Content:   stringField(sub, "message", "body", "content"),
		MessageID: stringField(sub, "last_message_id", "message_id"),
		Timestamp: timeField(sub, "timestamp", "received_at"),
	}
}

// parseLinkHitEnvelope handles the click shape:
// {"event": "LINK_HIT", "link_hit": {"url": ..., "hits": 2}}
func parseLinkHitEnvelope(eventType string, payload map[string]interface{}) *normalizedEvent {
	sub := subMap(payload, "link_hit")
	if sub == nil {
		return nil
	}
	if eventType == "" {
		eventType = EventTypeLinkHit
	}
	return &normalizedEvent{
		Type:       eventType,
		URL:        stringField(sub, "url", "link"),
		Hits:       intField(sub, "hits", 1),
		MessageID:  stringField(sub, "message_id"),
		MessageRef: stringField(sub, "message_ref", "ref"),
		UserAgent:  stringField(sub, "user_agent"),
		IP:         stringField(sub, "ip"),
		Timestamp:  timeField(sub, "timestamp", "clicked_at"),
	}
}

// parseLegacyFlat handles the pre-migration flat shape, where a dotted event
// type sits next to the fields themselves.
func parseLegacyFlat(eventType string, payload map[string]interface{}) *normalizedEvent {
	if eventType == "" {
		return nil
	}
	return &normalizedEvent{
		Type:       eventType,
		Status:     stringField(payload, "status", "state"),
		MessageID:  stringField(payload, "message_id"),
		MessageRef: stringField(payload, "message_ref", "ref"),
		ErrorText:  stringField(payload, "error", "reason"),
		MSISDN:     stringField(payload, "msisdn", "from"),
		Content:    stringField(payload, "message", "body"),
		URL:        stringField(payload, "url", "link"),
		Hits:       intField(payload, "hits", 1),
		UserAgent:  stringField(payload, "user_agent"),
		IP:         stringField(payload, "ip"),
		Timestamp:  timeField(payload, "timestamp"),
	}
}

func stringField(m map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func intField(m map[string]interface{}, key string, fallback int) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func subMap(m map[string]interface{}, key string) map[string]interface{} {
	if sub, ok := m[key].(map[string]interface{}); ok {
		return sub
	}
	return nil
}

func timeField(m map[string]interface{}, keys ...string) time.Time {
	for _, key := range keys {
		s, ok := m[key].(string)
		if !ok || s == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
		if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
