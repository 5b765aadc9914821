package rest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStart_ShutsDownOnContextCancel(t *testing.T) {
	// Given: a running server on an ephemeral port
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- Start(ctx, "0", newRegistry(), nil)
	}()

	// When: the application context is canceled
	time.Sleep(100 * time.Millisecond)
	cancel()

	// Then: the server drains and returns cleanly
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
