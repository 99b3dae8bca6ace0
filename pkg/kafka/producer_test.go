package kafka

import (
	"context"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer(t *testing.T) {
	p, err := NewProducer(Config{
		Brokers: []string{"localhost:9092", "localhost:9093"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:9092", "localhost:9093"}, p.brokers)
	assert.NotNil(t, p.writers)
	assert.Empty(t, p.writers)
	assert.Nil(t, p.transport)
}

func TestNewProducer_TransportSettings(t *testing.T) {
	p, err := NewProducer(Config{
		Brokers:       []string{"kafka:9093"},
		ClientID:      "riskd",
		TLS:           true,
		SASLEnabled:   true,
		SASLMechanism: "PLAIN",
		SASLUsername:  "user",
		SASLPassword:  "pass",
	})
	require.NoError(t, err)
	require.NotNil(t, p.transport)
	assert.Equal(t, "riskd", p.transport.ClientID)
	assert.NotNil(t, p.transport.TLS)
	assert.NotNil(t, p.transport.SASL)
}

func TestNewProducer_UnsupportedSASL(t *testing.T) {
	_, err := NewProducer(Config{SASLEnabled: true, SASLMechanism: "GSSAPI"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported SASL mechanism")
}

func TestSASLMechanism(t *testing.T) {
	tests := []struct {
		name      string
		mechanism string
		enabled   bool
		wantNil   bool
	}{
		{name: "disabled", enabled: false, wantNil: true},
		{name: "plain default", enabled: true, mechanism: ""},
		{name: "scram 256", enabled: true, mechanism: "SCRAM-SHA-256"},
		{name: "scram 512 lowercase", enabled: true, mechanism: "scram-sha-512"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Config{
				SASLEnabled:   tt.enabled,
				SASLMechanism: tt.mechanism,
				SASLUsername:  "u",
				SASLPassword:  "p",
			}.saslMechanism()
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, m)
			} else {
				assert.NotNil(t, m)
			}
		})
	}
}

func TestGetOrCreateWriter(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)

	w1 := p.getOrCreateWriter("risk.events")
	w2 := p.getOrCreateWriter("risk.events")
	w3 := p.getOrCreateWriter("risk.logs.raw")

	assert.Same(t, w1, w2)
	assert.NotSame(t, w1, w3)
	assert.Len(t, p.writers, 2)
	assert.Equal(t, "risk.events", w1.Topic)
}

func TestProducerPublish_NoMessages(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), "risk.events"))
	assert.Empty(t, p.writers)
}

func TestProducerClose(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)

	_ = p.getOrCreateWriter("topic-a")
	_ = p.getOrCreateWriter("topic-b")
	require.Len(t, p.writers, 2)

	require.NoError(t, p.Close())
	assert.Empty(t, p.writers)
}

func TestMessageConversion(t *testing.T) {
	msgs := toKafkaMessages([]Message{{
		Key:     []byte("key-1"),
		Value:   []byte(`{"score":9}`),
		Headers: map[string]string{"event_type": "risk.critical_event.detected"},
	}})
	require.Len(t, msgs, 1)
	assert.Equal(t, []byte("key-1"), msgs[0].Key)
	require.Len(t, msgs[0].Headers, 1)
	assert.Equal(t, "event_type", msgs[0].Headers[0].Key)

	back := fromKafkaMessage(kafkago.Message{
		Key:     msgs[0].Key,
		Value:   msgs[0].Value,
		Headers: msgs[0].Headers,
	})
	assert.Equal(t, "risk.critical_event.detected", back.Headers["event_type"])
	assert.Equal(t, `{"score":9}`, string(back.Value))
}
