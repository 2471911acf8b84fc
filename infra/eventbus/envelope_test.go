package eventbus

import (
	"testing"

	"github.com/amirasaad/atm/pkg/domain/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope_RoundTripKeepsConcreteType(t *testing.T) {
	src := depositEvent()
	raw, err := encodeEnvelope(src)
	require.NoError(t, err)

	got, err := decodeEnvelope(raw, events.Factories())
	require.NoError(t, err)
	dep, ok := got.(*events.DepositCompleted)
	require.True(t, ok, "expected *events.DepositCompleted, got %T", got)
	assert.Equal(t, src.ID, dep.ID)
	assert.True(t, src.Amount.Equal(dep.Amount))
}

func TestDecodeEnvelope_Errors(t *testing.T) {
	_, err := decodeEnvelope([]byte("not json"), events.Factories())
	assert.Error(t, err)

	_, err = decodeEnvelope([]byte(`{"type":"Nope","payload":{}}`), events.Factories())
	assert.ErrorContains(t, err, "unknown event type")
}

func TestNewWithKafka(t *testing.T) {
	t.Run("requires brokers", func(t *testing.T) {
		_, err := NewWithKafka(" , ", discardLogger(), nil)
		assert.Error(t, err)
	})

	t.Run("fills defaults", func(t *testing.T) {
		bus, err := NewWithKafka("localhost:9092, localhost:9093", nil, &KafkaEventBusConfig{})
		require.NoError(t, err)
		t.Cleanup(func() { _ = bus.Close() })
		assert.Equal(t, []string{"localhost:9092", "localhost:9093"}, bus.brokers)
		assert.Equal(t, "atm.ledger.events", bus.config.Topic)
		assert.Equal(t, "atm", bus.config.GroupID)
	})
}

func TestNewWithRedis_Validation(t *testing.T) {
	_, err := NewWithRedis("", "stream", "group", nil)
	assert.Error(t, err)

	_, err = NewWithRedis("://bad", "stream", "group", nil)
	assert.ErrorContains(t, err, "invalid URL")
}
