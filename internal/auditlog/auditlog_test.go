package auditlog_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/quill-sign/quill/internal/auditlog"
)

func TestParseEventType(t *testing.T) {
	for _, et := range auditlog.EventTypes() {
		got, err := auditlog.ParseEventType(string(et))
		if err != nil {
			t.Errorf("ParseEventType(%s) error = %v", et, err)
		}
		if got != et {
			t.Errorf("ParseEventType(%s) = %s", et, got)
		}
	}

	if _, err := auditlog.ParseEventType("DOCUMENT_EXPLODED"); err == nil {
		t.Error("expected error for unknown event type")
	}
}

func TestEventTypeUnmarshalJSON(t *testing.T) {
	var et auditlog.EventType
	if err := json.Unmarshal([]byte(`"DOCUMENT_FIELD_INSERTED"`), &et); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if et != auditlog.EventFieldInserted {
		t.Errorf("got %s, want DOCUMENT_FIELD_INSERTED", et)
	}

	if err := json.Unmarshal([]byte(`"INVALID"`), &et); err == nil {
		t.Error("expected error for unknown event type")
	}
}

func TestActorFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/documents", nil)
	r.Header.Set("X-Actor-Name", "Ada Lovelace")
	r.Header.Set("X-Actor-Email", "ada@example.com")

	actor := auditlog.ActorFromRequest(r)
	if actor.Name != "Ada Lovelace" {
		t.Errorf("name: got %s, want Ada Lovelace", actor.Name)
	}
	if actor.Email != "ada@example.com" {
		t.Errorf("email: got %s, want ada@example.com", actor.Email)
	}
}

func TestActorFromRequestMissingHeaders(t *testing.T) {
	r := httptest.NewRequest("GET", "/documents", nil)

	actor := auditlog.ActorFromRequest(r)
	if actor.Name != "" || actor.Email != "" {
		t.Errorf("expected empty actor, got %+v", actor)
	}
}

func TestMetadataFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		remoteAddr string
		wantIP     string
	}{
		{
			name:       "forwarded header wins",
			forwarded:  "203.0.113.7",
			remoteAddr: "10.0.0.1:52412",
			wantIP:     "203.0.113.7",
		},
		{
			name:       "first forwarded hop",
			forwarded:  "203.0.113.7, 198.51.100.2",
			remoteAddr: "10.0.0.1:52412",
			wantIP:     "203.0.113.7",
		},
		{
			name:       "remote addr host fallback",
			remoteAddr: "192.0.2.4:52412",
			wantIP:     "192.0.2.4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/sign/token", nil)
			r.Header.Set("User-Agent", "quill-test/1.0")
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			r.RemoteAddr = tt.remoteAddr

			meta := auditlog.MetadataFromRequest(r)
			if meta.IPAddress != tt.wantIP {
				t.Errorf("ip: got %s, want %s", meta.IPAddress, tt.wantIP)
			}
			if meta.UserAgent != "quill-test/1.0" {
				t.Errorf("user agent: got %s", meta.UserAgent)
			}
		})
	}
}

func TestGroupByEmail(t *testing.T) {
	entries := []auditlog.Entry{
		{ActorEmail: "a@example.com", Type: auditlog.EventDocumentSent},
		{ActorEmail: "b@example.com", Type: auditlog.EventDocumentOpened},
		{ActorEmail: "a@example.com", Type: auditlog.EventFieldInserted},
	}

	grouped := auditlog.GroupByEmail(entries)
	if len(grouped) != 2 {
		t.Fatalf("groups: got %d, want 2", len(grouped))
	}
	if len(grouped["a@example.com"]) != 2 {
		t.Errorf("a@example.com entries: got %d, want 2", len(grouped["a@example.com"]))
	}
	if grouped["a@example.com"][0].Type != auditlog.EventDocumentSent {
		t.Error("entry order not preserved within bucket")
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	payload := auditlog.RecipientPayload{
		RecipientID:    uuid.New(),
		RecipientEmail: "a@example.com",
		RecipientRole:  "SIGNER",
		Action:         "SIGNED",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded auditlog.RecipientPayload
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded != payload {
		t.Errorf("round trip mismatch: %+v != %+v", decoded, payload)
	}
}
