package http_test

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/aretw0/intake/internal/logging"
	intakehttp "github.com/aretw0/intake/pkg/adapters/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_ShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- intakehttp.Serve(ctx, addr, http.NotFoundHandler(), logging.NewNop())
	}()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(intakehttp.ShutdownTimeout + time.Second):
		t.Fatal("Serve did not return")
	}
}
