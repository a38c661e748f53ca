package amqp

import "testing"

func TestExportMessageRoundTrip(t *testing.T) {
	msg := NewExportMessage(42, 2024, 1)
	if msg.JobID == "" {
		t.Fatal("expected a job id")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := ExportMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.JobID != msg.JobID || got.UserID != 42 || got.Year != 2024 || got.Month != 1 {
		t.Fatalf("message not preserved: %+v", got)
	}
}

func TestExportMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := ExportMessageFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected error")
	}
}

func TestExportMessageJobIDsUnique(t *testing.T) {
	a := NewExportMessage(1, 2024, 1)
	b := NewExportMessage(1, 2024, 1)
	if a.JobID == b.JobID {
		t.Fatal("expected distinct job ids")
	}
}
