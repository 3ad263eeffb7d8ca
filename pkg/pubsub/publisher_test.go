package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocalPublisher(t *testing.T) {
	var received []*Pack
	publisher := NewLocalPublisher(func(ctx context.Context, pack *Pack, _ time.Time) {
		received = append(received, pack)
	})

	require.NoError(t, publisher.Publish(context.Background(), "xp_awarded", &Pack{Key: []byte("k"), Msg: []byte("m")}))
	require.Len(t, received, 1)
	require.Equal(t, "xp_awarded", received[0].Topic)
	require.Equal(t, []byte("m"), received[0].Msg)
}
