package telephony

import (
	"testing"
	"time"
)

func TestDecodeWebhookEvent(t *testing.T) {
	body := []byte(`{
		"call_id": " c-123 ",
		"status": "completed",
		"end_time": "2025-03-04T15:04:05.123Z",
		"transcript": null,
		"call_length": 61.6,
		"concatenated_transcript": "user: send me the price sheet"
	}`)
	ev, err := DecodeWebhookEvent(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.CallID != "c-123" {
		t.Fatalf("expected trimmed call id, got %q", ev.CallID)
	}
	if ev.Transcript != nil {
		t.Fatalf("expected null transcript dropped")
	}
	d, ok := ev.DurationSeconds()
	if !ok || d != 62 {
		t.Fatalf("expected 62s, got %d %v", d, ok)
	}
	end, ok := ev.EndedAt()
	if !ok || !end.Equal(time.Date(2025, 3, 4, 15, 4, 5, 123000000, time.UTC)) {
		t.Fatalf("unexpected end time %s %v", end, ok)
	}
}

func TestDecodeWebhookEvent_Malformed(t *testing.T) {
	if _, err := DecodeWebhookEvent([]byte(`{"call_id":`)); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestDurationSeconds_Absent(t *testing.T) {
	if _, ok := (WebhookEvent{}).DurationSeconds(); ok {
		t.Fatalf("expected no duration")
	}
	zero := 0.0
	if _, ok := (WebhookEvent{CallLength: &zero}).DurationSeconds(); ok {
		t.Fatalf("zero length is treated as unknown")
	}
}

func TestParseTimestamp_Layouts(t *testing.T) {
	for _, v := range []string{"2025-01-02T03:04:05Z", "2025-01-02 03:04:05", "2025-01-02T03:04:05"} {
		if _, ok := ParseTimestamp(v); !ok {
			t.Fatalf("expected %q to parse", v)
		}
	}
	if _, ok := ParseTimestamp("yesterday"); ok {
		t.Fatalf("expected garbage to be rejected")
	}
}
