package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/talent-sift/internal/audit"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewKafkaPublisher_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaPublisher(nil, nil)
	assert.Error(t, err)
}

func TestRecord_UsesMappedTopicAndCaseKey(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisherWithWriter(w, Topics("talent.shortlist", "talent.runs"))

	err := p.Record(context.Background(), audit.Event{
		ID:        "e-1",
		Type:      audit.EventCandidateShortlistFail,
		SessionID: "s-1",
		CaseID:    "CS42",
		Target:    "qntrl",
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "talent.shortlist", msg.Topic)
	assert.Equal(t, "CS42", string(msg.Key))

	var decoded audit.Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "qntrl", decoded.Target)
}

func TestPublish_FallsBackToEventType(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisherWithWriter(w, nil)

	require.NoError(t, p.Record(context.Background(), audit.Event{Type: audit.EventRunCompleted, SessionID: "s-9"}))
	assert.Equal(t, audit.EventRunCompleted, w.msgs[0].Topic)
	assert.Equal(t, "s-9", string(w.msgs[0].Key))
}

func TestPublish_WrapsWriterError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := NewKafkaPublisherWithWriter(w, nil)

	err := p.Publish(context.Background(), "x", nil, "")
	assert.ErrorContains(t, err, "broker down")

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}
