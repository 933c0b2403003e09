package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	event := NewJobSearchPerformed("s1", "python", "fr", 42, 5)

	raw, err := json.Marshal(ToEnvelope(event))
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	decoded := env.Event()

	assert.Equal(t, TypeJobSearchPerformed, decoded.EventType())
	assert.Equal(t, "python", decoded.Payload()["query"])
	assert.Equal(t, float64(42), decoded.Payload()["total"])
	assert.True(t, event.Timestamp().UTC().Equal(decoded.Timestamp()))
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), NewSessionCleared("s1")))
}
