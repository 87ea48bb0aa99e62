package app

import (
	"context"
	"time"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/push"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/transport/kafka"
)

func makePushHandler(sink push.Sink) kafka.HandleFunc {
	return func(ctx context.Context, e push.Event) error {
		sinkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return sink.Send(sinkCtx, e)
	}
}
