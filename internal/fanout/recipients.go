package fanout

import "github.com/Ltancreti7/swaprunn-dispatch/internal/domain"

// Recipients derives who should hear about a transition on d caused by
// actorID. Candidates are considered in order driver, sales originator,
// dealer; unset identities are skipped, duplicates collapse, and the actor
// never notifies themselves.
func Recipients(d *domain.Delivery, actorID string) []string {
	candidates := make([]string, 0, 3)
	if d.DriverID != nil {
		candidates = append(candidates, *d.DriverID)
	}
	if d.SalesID != nil {
		candidates = append(candidates, *d.SalesID)
	}
	candidates = append(candidates, d.DealerID)

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if id == "" || id == actorID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
