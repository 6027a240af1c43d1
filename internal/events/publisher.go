// Package events publishes synchronization events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"StravaFriendsDashboard/internal/domain"
)

const EventActivitiesSynced = "activities.synced"

// ActivitiesSynced is the JSON value of an activities.synced message. The
// message key is the user ID so one user's events stay ordered within a
// partition.
type ActivitiesSynced struct {
	Type          string     `json:"type"`
	UserID        string     `json:"userId"`
	InsertedCount int        `json:"insertedCount"`
	Fetched       int        `json:"fetched"`
	Pages         int        `json:"pages"`
	Watermark     *time.Time `json:"watermark,omitempty"`
	OccurredAt    time.Time  `json:"occurredAt"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	w   messageWriter
	now func() time.Time
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			Compression:            kafka.Snappy,
			AllowAutoTopicCreation: true,
		},
		now: time.Now,
	}
}

func (p *KafkaPublisher) PublishActivitiesSynced(ctx context.Context, userID string, res domain.SyncResult) error {
	msg, err := buildMessage(userID, res, p.now().UTC())
	if err != nil {
		return err
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", EventActivitiesSynced, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

func buildMessage(userID string, res domain.SyncResult, at time.Time) (kafka.Message, error) {
	body, err := json.Marshal(ActivitiesSynced{
		Type:          EventActivitiesSynced,
		UserID:        userID,
		InsertedCount: res.InsertedCount,
		Fetched:       res.Fetched,
		Pages:         res.Pages,
		Watermark:     res.Watermark,
		OccurredAt:    at,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode %s: %w", EventActivitiesSynced, err)
	}
	return kafka.Message{
		Key:   []byte(userID),
		Value: body,
		Time:  at,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(EventActivitiesSynced)},
		},
	}, nil
}
