package app

import (
	"log"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGracefulShutdown_DoesNotPanic(t *testing.T) {
	t.Parallel()

	srv := &http.Server{
		Addr:    "127.0.0.1:0",
		Handler: http.NewServeMux(),
	}
	logger := log.New(log.Writer(), "", 0)

	require.NotPanics(t, func() {
		gracefulShutdown(srv, logger, 100*time.Millisecond)
	})
}

func TestStartServer_ShutsDownCleanly(t *testing.T) {
	t.Parallel()

	srv := &http.Server{
		Addr:    "127.0.0.1:0",
		Handler: http.NewServeMux(),
	}
	logger := log.New(log.Writer(), "", 0)

	startServer(srv, logger)
	time.Sleep(50 * time.Millisecond)

	require.NotPanics(t, func() {
		gracefulShutdown(srv, logger, time.Second)
	})
}
