package game

import (
	"time"

	"go.uber.org/zap"
)

// WitnessCeiling is assumed to exceed any real client latency. A player
// with latency L receives a witnessed event WitnessCeiling-L after the
// broadcast, so every player perceives it at about the same instant.
const WitnessCeiling = 500 * time.Millisecond

func afterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// witnessDelay is max(0, WitnessCeiling - latency)
func witnessDelay(latencyMs uint32) time.Duration {
	lat := time.Duration(latencyMs) * time.Millisecond
	if lat >= WitnessCeiling {
		return 0
	}
	return WitnessCeiling - lat
}

// BroadcastWitness schedules a Witness-wrapped ev for every player, each
// delayed by its own compensation. It returns immediately; deliveries to
// stale mailboxes are dropped.
func (r *Room) BroadcastWitness(ev Event) {
	w := Witness{Msg: ev}
	for _, p := range r.Players {
		mb := p.Mailbox()
		delay := witnessDelay(p.Latency())
		pid := p.Player.ID
		r.schedule(delay, func() {
			if !mb.Deliver(w) {
				r.logger.Debug("Dropped witness event", zap.Uint32("player_id", uint32(pid)))
			}
		})
	}
}
