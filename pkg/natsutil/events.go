/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package natsutil publishes droidctl events to NATS JetStream as CloudEvents.
package natsutil

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/droidctl/pkg/logger"
	"github.com/carverauto/droidctl/pkg/models"
)

const (
	eventSource      = "droidctl"
	eventTypePrefix  = "com.carverauto.droidctl."
	subjectSample    = "metrics.sample"
	subjectTask      = "tasks.finished"
	subjectNotify    = "notifications"
	publishTimeout   = 5 * time.Second
	contentTypeJSON  = "application/json"
	cloudEventsSpecV = "1.0"
)

// Publisher is the subset of jetstream.JetStream used for publishing.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
	PublishAsync(subject string, payload []byte, opts ...jetstream.PublishOpt) (jetstream.PubAckFuture, error)
}

// EventPublisher provides methods for publishing CloudEvents to NATS JetStream.
// It serves as the monitor sink, the task event sink and a notifier.
type EventPublisher struct {
	js     Publisher
	stream string
	prefix string
	logger logger.Logger
}

// NewEventPublisher creates a publisher writing under the given subject prefix.
func NewEventPublisher(js Publisher, streamName, prefix string, log logger.Logger) *EventPublisher {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &EventPublisher{
		js:     js,
		stream: streamName,
		prefix: prefix,
		logger: log,
	}
}

// Stream returns the name of the backing stream.
func (p *EventPublisher) Stream() string {
	return p.stream
}

// Subject joins the prefix and a subject suffix.
func (p *EventPublisher) Subject(suffix string) string {
	if p.prefix == "" {
		return suffix
	}

	return p.prefix + "." + suffix
}

func (p *EventPublisher) event(suffix, kind string, ts time.Time, data interface{}) ([]byte, string, error) {
	event := models.CloudEvent{
		SpecVersion:     cloudEventsSpecV,
		ID:              uuid.NewString(),
		Source:          eventSource,
		Type:            eventTypePrefix + kind,
		DataContentType: contentTypeJSON,
		Subject:         p.Subject(suffix),
		Time:            &ts,
		Data:            data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal %s event: %w", kind, err)
	}

	return payload, event.Subject, nil
}

func (p *EventPublisher) publish(ctx context.Context, suffix, kind string, data interface{}) error {
	payload, subject, err := p.event(suffix, kind, time.Now(), data)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	ack, err := p.js.Publish(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", kind, err)
	}

	p.logger.Debug().
		Str("subject", subject).
		Uint64("seq", ack.Sequence).
		Msg("Published event")

	return nil
}

// PublishSample publishes one monitoring tick.
func (p *EventPublisher) PublishSample(ctx context.Context, sample models.MetricSample) error {
	return p.publish(ctx, subjectSample, "metrics.sample", sample)
}

// PublishTask publishes the outcome of a background task.
func (p *EventPublisher) PublishTask(ctx context.Context, event models.TaskEventData) error {
	return p.publish(ctx, subjectTask, "task.finished", event)
}

// Notify publishes a notification without waiting for the acknowledgement.
func (p *EventPublisher) Notify(n models.Notification) {
	ts := n.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	payload, subject, err := p.event(subjectNotify, "notification", ts, n)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Dropping notification")

		return
	}

	if _, err := p.js.PublishAsync(subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("Failed to publish notification")
	}
}
