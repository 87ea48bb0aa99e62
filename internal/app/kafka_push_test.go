package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/push"
)

type spySink struct {
	called int
	ctx    context.Context
	event  push.Event
	err    error
}

func (s *spySink) Send(ctx context.Context, e push.Event) error {
	s.called++
	s.ctx = ctx
	s.event = e
	return s.err
}

func requireTimeout2s(t *testing.T, ctx context.Context) {
	t.Helper()
	deadline, ok := ctx.Deadline()
	require.True(t, ok, "expected context with deadline")

	remaining := time.Until(deadline)
	require.Greater(t, remaining, 1*time.Second)
	require.Less(t, remaining, 3*time.Second)
}

func TestMakePushHandler_DelegatesToSink(t *testing.T) {
	t.Parallel()

	sink := &spySink{}
	h := makePushHandler(sink)

	in := push.Event{UserID: "driver-5", Title: "Delivery accepted"}

	err := h(context.Background(), in)
	require.NoError(t, err)

	require.Equal(t, 1, sink.called)
	require.Equal(t, in, sink.event)
	requireTimeout2s(t, sink.ctx)
}

func TestMakePushHandler_PropagatesSinkError(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("push boom")
	sink := &spySink{err: sentinel}
	h := makePushHandler(sink)

	err := h(context.Background(), push.Event{UserID: "driver-5"})
	require.ErrorIs(t, err, sentinel)
}
