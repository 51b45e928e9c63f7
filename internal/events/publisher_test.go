package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/AhmedAlsudairy/vale-project-sub000/internal/domain"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/status"
)

func TestTopic(t *testing.T) {
	p := NewPublisher(nil, "maintenance/records")
	got := p.Topic(RecordCreated{Kind: domain.KindWinding, TagNo: "M-7"})
	if got != "maintenance/records/winding_resistance/M-7" {
		t.Fatalf("topic = %s", got)
	}
}

func TestRecordCreatedPayload(t *testing.T) {
	evt := RecordCreated{
		Kind:     domain.KindBrush,
		RecordID: 4,
		TagNo:    "M-7",
		Date:     time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Band:     status.Critical,
	}
	b, err := json.Marshal(evt)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"kind":"carbon_brush","record_id":4,"tag_no":"M-7","date":"2024-06-03T00:00:00Z","inspector":"","band":"Critical"}`
	if string(b) != want {
		t.Fatalf("got %s", b)
	}
}
