package telephony

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// WebhookEvent is a call status delivery posted by the provider.
type WebhookEvent struct {
	CallID                 string          `json:"call_id"`
	Status                 string          `json:"status"`
	EndTime                string          `json:"end_time"`
	Transcript             json.RawMessage `json:"transcript"`
	RecordingURL           string          `json:"recording_url"`
	Summary                string          `json:"summary"`
	CallLength             *float64        `json:"call_length"`
	ConcatenatedTranscript string          `json:"concatenated_transcript"`
}

// DecodeWebhookEvent parses a raw delivery body.
func DecodeWebhookEvent(body []byte) (WebhookEvent, error) {
	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return WebhookEvent{}, fmt.Errorf("decode webhook event: %w", err)
	}
	ev.CallID = strings.TrimSpace(ev.CallID)
	if isJSONNull(ev.Transcript) {
		ev.Transcript = nil
	}
	return ev, nil
}

// EndedAt returns the provider-reported end time, if it parses.
func (e WebhookEvent) EndedAt() (time.Time, bool) {
	return ParseTimestamp(e.EndTime)
}

// DurationSeconds rounds call_length to whole seconds. Absent or zero
// lengths report false.
func (e WebhookEvent) DurationSeconds() (int, bool) {
	if e.CallLength == nil || *e.CallLength <= 0 {
		return 0, false
	}
	return int(math.Round(*e.CallLength)), true
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp accepts the timestamp shapes the provider emits.
// Values without a zone are read as UTC.
func ParseTimestamp(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
