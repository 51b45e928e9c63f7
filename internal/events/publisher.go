// Package events publishes record lifecycle events over MQTT.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/AhmedAlsudairy/vale-project-sub000/internal/domain"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/status"
)

// RecordCreated is published after a record is stored.
type RecordCreated struct {
	Kind      domain.RecordKind `json:"kind"`
	RecordID  int64             `json:"record_id"`
	TagNo     string            `json:"tag_no"`
	Date      time.Time         `json:"date"`
	Inspector string            `json:"inspector"`
	Band      status.Band       `json:"band"`
}

type Publisher struct {
	client mqtt.Client
	topic  string
}

func NewPublisher(client mqtt.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

// Dial connects an MQTT client to broker.
func Dial(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID(clientID).SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return client, nil
}

// Topic is where evt is published: <base>/<kind>/<tag>.
func (p *Publisher) Topic(evt RecordCreated) string {
	return fmt.Sprintf("%s/%s/%s", p.topic, evt.Kind, evt.TagNo)
}

func (p *Publisher) Publish(evt RecordCreated) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	token := p.client.Publish(p.Topic(evt), 1, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt publish timed out")
	}
	return token.Error()
}
