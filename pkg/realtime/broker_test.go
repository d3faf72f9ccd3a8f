package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesEveryStreamOfTheUser(t *testing.T) {
	b := NewBroker()
	first := b.Subscribe(1)
	second := b.Subscribe(1)
	other := b.Subscribe(2)

	assert.Equal(t, 2, b.Publish(1, "notification", map[string]string{"title": "hi"}))

	for _, ch := range []chan Event{first, second} {
		ev := <-ch
		assert.Equal(t, "notification", ev.Type)
		var data map[string]string
		require.NoError(t, json.Unmarshal(ev.Data, &data))
		assert.Equal(t, "hi", data["title"])
	}
	assert.Len(t, other, 0)
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe(1)
	for i := 0; i < cap(ch); i++ {
		require.Equal(t, 1, b.Publish(1, "n", i))
	}
	assert.Equal(t, 0, b.Publish(1, "n", "overflow"))
}

func TestUnsubscribeClosesAndForgets(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe(5)
	b.Unsubscribe(5, ch)

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, b.ClientCount(5))
	assert.Equal(t, 0, b.Publish(5, "n", nil))

	// second call is harmless
	b.Unsubscribe(5, ch)
}
