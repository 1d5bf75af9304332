package slicer

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// PreviewEvent summarizes a debounced preview recompute for subscribers.
type PreviewEvent struct {
	MinZ      float64 `json:"minZ"`
	MaxZ      float64 `json:"maxZ"`
	Count     int     `json:"count"`
	Timestamp int64   `json:"timestamp"`
}

// ConversionEvent announces a completed PGM/YAML conversion.
type ConversionEvent struct {
	PGMPath    string  `json:"pgmPath"`
	YAMLPath   string  `json:"yamlPath"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	MinZ       float64 `json:"minZ"`
	MaxZ       float64 `json:"maxZ"`
	Resolution float64 `json:"resolution"`
	Timestamp  int64   `json:"timestamp"`
}

// Publisher publishes preview summaries and conversion results to MQTT.
type Publisher struct {
	client        mqtt.Client
	publishPrefix string
	qos           byte
	retain        bool
}

// NewPublisher creates a publisher. If client is nil, publishing is
// disabled (for testing).
func NewPublisher(client mqtt.Client) *Publisher {
	prefix := os.Getenv("MQTT_PUBLISH_PREFIX")
	if prefix == "" {
		prefix = "cloudslice"
	}

	return &Publisher{
		client:        client,
		publishPrefix: prefix,
		qos:           0,    // previews are fire and forget
		retain:        true, // retain the latest state for late subscribers
	}
}

// PublishPreview publishes a preview summary to {prefix}/preview.
func (p *Publisher) PublishPreview(r ElevationRange, count int) error {
	event := &PreviewEvent{
		MinZ:      r.MinZ,
		MaxZ:      r.MaxZ,
		Count:     count,
		Timestamp: time.Now().Unix(),
	}
	return p.publish(fmt.Sprintf("%s/preview", p.publishPrefix), event)
}

// PublishConversion publishes a conversion result to {prefix}/conversions.
func (p *Publisher) PublishConversion(res *ConvertResult, req ConvertRequest) error {
	event := &ConversionEvent{
		PGMPath:    res.PGMPath,
		YAMLPath:   res.YAMLPath,
		Width:      res.Width,
		Height:     res.Height,
		MinZ:       req.Range.MinZ,
		MaxZ:       req.Range.MaxZ,
		Resolution: req.Resolution,
		Timestamp:  time.Now().Unix(),
	}
	return p.publish(fmt.Sprintf("%s/conversions", p.publishPrefix), event)
}

func (p *Publisher) publish(topic string, event interface{}) error {
	if p.client == nil || !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	log.Printf("[MQTT] published %s (%d bytes)", topic, len(payload))
	return nil
}
