package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestWriteFlattensFields(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Warn("provider.url_missing", map[string]any{
		"video_id": "v1",
		"error":    errors.New("no url"),
		"msg":      "overridden",
	})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v (%s)", err, buf.String())
	}
	if entry["level"] != "warn" {
		t.Fatalf("expected level warn, got %v", entry["level"])
	}
	if entry["msg"] != "provider.url_missing" {
		t.Fatalf("expected msg to win over fields, got %v", entry["msg"])
	}
	if entry["error"] != "no url" {
		t.Fatalf("expected error string, got %v", entry["error"])
	}
	if entry["video_id"] != "v1" {
		t.Fatalf("expected video_id field, got %v", entry["video_id"])
	}
}
