package push

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "abc", maskToken("abc"))
	assert.Equal(t, "...567890", maskToken("1234567890"))
}

func TestSendToTokensWithoutTokensIsNoop(t *testing.T) {
	var f FCMClient
	stale, err := f.SendToTokens(context.Background(), nil, "t", "b", nil)
	assert.NoError(t, err)
	assert.Empty(t, stale)
}
