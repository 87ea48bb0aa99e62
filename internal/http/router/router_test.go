package router_test

import (
	"net/http"
	"testing"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/http/handlers"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/http/router"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/logx"
)

func TestNew_NotNil(t *testing.T) {
	base := &handlers.Handlers{}
	del := &handlers.DeliveryHandler{}
	fd := &handlers.FeedHandler{}
	pr := &handlers.PresenceHandler{}
	nt := &handlers.NotificationHandler{}

	var _ http.Handler = router.New(logx.Nop(), base, del, fd, pr, nt)
}
