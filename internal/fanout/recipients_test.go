package fanout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/domain"
)

func strptr(s string) *string { return &s }

func TestRecipients_ExcludesActor(t *testing.T) {
	t.Parallel()

	d := &domain.Delivery{
		DealerID: "dealer-1",
		DriverID: strptr("driver-1"),
		SalesID:  strptr("sales-1"),
	}

	assert.Equal(t, []string{"sales-1", "dealer-1"}, Recipients(d, "driver-1"))
	assert.Equal(t, []string{"driver-1", "dealer-1"}, Recipients(d, "sales-1"))
	assert.Equal(t, []string{"driver-1", "sales-1"}, Recipients(d, "dealer-1"))
}

func TestRecipients_SkipsUnsetParties(t *testing.T) {
	t.Parallel()

	d := &domain.Delivery{DealerID: "dealer-1"}
	assert.Equal(t, []string{"dealer-1"}, Recipients(d, "driver-9"))

	d = &domain.Delivery{DealerID: "dealer-1", DriverID: strptr("driver-1")}
	assert.Equal(t, []string{"driver-1", "dealer-1"}, Recipients(d, "someone-else"))
}

func TestRecipients_Deduplicates(t *testing.T) {
	t.Parallel()

	// The dealer principal also originated the delivery as sales.
	d := &domain.Delivery{
		DealerID: "dealer-1",
		DriverID: strptr("driver-1"),
		SalesID:  strptr("dealer-1"),
	}
	assert.Equal(t, []string{"driver-1", "dealer-1"}, Recipients(d, "someone-else"))
}

func TestRecipients_ActorIsOnlyParty(t *testing.T) {
	t.Parallel()

	d := &domain.Delivery{DealerID: "dealer-1"}
	assert.Empty(t, Recipients(d, "dealer-1"))
}
