package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/AhmedAlsudairy/vale-project-sub000/internal/domain"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/views"
)

// CameraSample is the payload a networked thermal camera publishes.
type CameraSample struct {
	TagNo     string        `json:"tag_no"`
	Inspector string        `json:"inspector"`
	Timestamp time.Time     `json:"timestamp"`
	Points    domain.Points `json:"points"`
	AmbientC  *float64      `json:"ambient_c"`
}

// FromMQTT stores a camera sample as a thermography session.
func (s *ThermographyService) FromMQTT(ctx context.Context, topic string, payload []byte) (views.ThermographyView, error) {
	var smp CameraSample
	if err := json.Unmarshal(payload, &smp); err != nil {
		return views.ThermographyView{}, invalid("malformed payload on %s: %v", topic, err)
	}
	if len(smp.Points) == 0 {
		return views.ThermographyView{}, invalid("payload on %s has no temperature points", topic)
	}
	in := ThermographyInput{
		RecordInput: RecordInput{
			TagNo:     smp.TagNo,
			Inspector: smp.Inspector,
			Remarks:   "captured via " + topic,
		},
		Temperatures: smp.Points,
		AmbientC:     smp.AmbientC,
	}
	if !smp.Timestamp.IsZero() {
		in.Date = smp.Timestamp.UTC().Format(time.RFC3339)
	}
	if in.Inspector == "" {
		in.Inspector = "camera"
	}
	return s.Create(ctx, in)
}
