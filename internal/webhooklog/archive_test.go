package webhooklog

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestDeliveryDocument_JSONPayload(t *testing.T) {
	at := time.Date(2025, 5, 6, 9, 0, 0, 0, time.FixedZone("CDT", -5*3600))
	doc := deliveryDocument("b1", []byte(`{"call_id":"b1","status":"completed","call_length":12.5}`), at)

	if doc["provider_call_id"] != "b1" {
		t.Fatalf("expected provider_call_id b1, got %v", doc["provider_call_id"])
	}
	if got := doc["received_at"].(time.Time); got.Location() != time.UTC || !got.Equal(at) {
		t.Fatalf("expected UTC received_at, got %v", got)
	}
	body, ok := doc["payload"].(bson.M)
	if !ok {
		t.Fatalf("expected payload document, got %T", doc["payload"])
	}
	if body["status"] != "completed" {
		t.Fatalf("unexpected payload: %v", body)
	}
	if _, ok := doc["payload_raw"]; ok {
		t.Fatalf("payload_raw must be absent for JSON payloads")
	}
}

func TestDeliveryDocument_NonJSONPayload(t *testing.T) {
	doc := deliveryDocument("b2", []byte("call_id=b2"), time.Now())
	if doc["payload_raw"] != "call_id=b2" {
		t.Fatalf("expected raw payload, got %v", doc["payload_raw"])
	}
	if _, ok := doc["payload"]; ok {
		t.Fatalf("payload must be absent for non-JSON payloads")
	}
}
