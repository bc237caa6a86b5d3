package httpapi

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophprovider/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ln, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}), logging.Nop())
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String())
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusTeapot
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_BadAddress(t *testing.T) {
	err := Run(context.Background(), "256.0.0.1:-1", http.NotFoundHandler(), logging.Nop())
	assert.Error(t, err)
}
