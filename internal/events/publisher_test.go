package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"StravaFriendsDashboard/internal/domain"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestBuildMessage(t *testing.T) {
	at := time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC)
	wm := time.Date(2025, time.March, 2, 6, 30, 0, 0, time.UTC)

	msg, err := buildMessage("42", domain.SyncResult{InsertedCount: 3, Fetched: 5, Pages: 2, Watermark: &wm}, at)
	require.NoError(t, err)
	require.Equal(t, "42", string(msg.Key))
	require.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 1)
	require.Equal(t, EventActivitiesSynced, string(msg.Headers[0].Value))

	var got ActivitiesSynced
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	require.Equal(t, EventActivitiesSynced, got.Type)
	require.Equal(t, "42", got.UserID)
	require.Equal(t, 3, got.InsertedCount)
	require.Equal(t, 5, got.Fetched)
	require.Equal(t, 2, got.Pages)
	require.NotNil(t, got.Watermark)
	require.True(t, got.Watermark.Equal(wm))
}

func TestBuildMessageOmitsEmptyWatermark(t *testing.T) {
	msg, err := buildMessage("42", domain.SyncResult{}, time.Unix(0, 0).UTC())
	require.NoError(t, err)
	require.NotContains(t, string(msg.Value), "watermark")
}

func TestPublishActivitiesSynced(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaPublisher{w: w, now: func() time.Time { return time.Unix(100, 0) }}

	require.NoError(t, p.PublishActivitiesSynced(context.Background(), "7", domain.SyncResult{InsertedCount: 1}))
	require.Len(t, w.msgs, 1)
	require.Equal(t, "7", string(w.msgs[0].Key))

	w.err = errors.New("broker down")
	err := p.PublishActivitiesSynced(context.Background(), "7", domain.SyncResult{})
	require.ErrorContains(t, err, "broker down")
}
