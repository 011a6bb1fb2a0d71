package coordinator

import (
	"time"

	"github.com/pawapay/pawarisk/pkg/models"
)

// liveWindow is how long after kickoff an event is still considered
// live before it's treated as finished; football matches plus
// stoppage/extra-time rarely run past this.
const liveWindow = 3 * time.Hour

// ComputeStatus derives an event's lifecycle stage from its kickoff
// time. This replaces Mercury's closer.StatusUpdater ticker, which
// polls the events table on its own schedule: since pawaRisk already
// recomputes every event's state on each scrape cycle, status derives
// inline from the kickoff timestamp already in hand instead of running
// a second background sweep against the store.
func ComputeStatus(kickoff, now time.Time) models.EventStatus {
	switch {
	case now.Before(kickoff):
		return models.EventUpcoming
	case now.Before(kickoff.Add(liveWindow)):
		return models.EventLive
	default:
		return models.EventFinished
	}
}
