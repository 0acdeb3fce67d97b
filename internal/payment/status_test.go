package payment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusText(t *testing.T) {
	for s := StatusNotStarted; s <= StatusError; s++ {
		parsed, err := ParseStatus(s.String())
		require.NoError(t, err)
		require.Equal(t, s, parsed)
	}
	_, err := ParseStatus("Settled")
	require.Error(t, err)
	require.Equal(t, "Unknown", Status(42).String())

	b, err := json.Marshal(map[string]Status{"status": StatusTimedOut})
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"TimedOut"}`, string(b))
}

func TestStatusTerminal(t *testing.T) {
	require.False(t, StatusNotStarted.Terminal())
	require.False(t, StatusSubmitting.Terminal())
	require.False(t, StatusAwaitingConfirmation.Terminal())
	require.True(t, StatusCompleted.Terminal())
	require.True(t, StatusFailed.Terminal())
	require.True(t, StatusTimedOut.Terminal())
	require.True(t, StatusError.Terminal())
}
