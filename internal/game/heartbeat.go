package game

import (
	"buzzer/internal/model"
	"math"
	"time"
)

// LatencyWindow is the number of samples averaged by Latency
const LatencyWindow = 5

var nowMillis = func() model.UnixMs {
	return model.UnixMs(time.Now().UnixMilli())
}

type trackedTime struct {
	sent     model.UnixMs
	recv     model.UnixMs
	received bool
}

// forward is the server-to-client leg, or false while the echo is missing
func (t trackedTime) forward() (uint32, bool) {
	if !t.received {
		return 0, false
	}
	if t.recv < t.sent {
		return 0, true
	}
	return clampUint32(t.recv - t.sent), true
}

// LatencyTracker estimates one connection's latency from heartbeat
// exchanges. Each sample takes two client messages: the echo of DoHeartbeat
// (forward leg) and the client's own round-trip estimate.
type LatencyTracker struct {
	samples  [LatencyWindow]uint32
	inflight map[model.HeartbeatID]trackedTime
	counter  uint32
}

// NewLatencyTracker returns a tracker with an all-zero window
func NewLatencyTracker() *LatencyTracker {
	return &LatencyTracker{
		inflight: make(map[model.HeartbeatID]trackedTime),
	}
}

// NextID derives a heartbeat id from the millisecond part of tSent and an
// internal counter, so rapid calls never collide
func (t *LatencyTracker) NextID(tSent model.UnixMs) model.HeartbeatID {
	id := uint32(tSent%1000) + t.counter*1000
	t.counter++
	return id
}

// RecordSent remembers that DoHeartbeat hbid left the server at tSent
func (t *LatencyTracker) RecordSent(hbid model.HeartbeatID, tSent model.UnixMs) {
	t.inflight[hbid] = trackedTime{sent: tSent}
}

// RecordReceipt stores the client's receive time for hbid. Unknown ids are
// ignored and reported as false.
func (t *LatencyTracker) RecordReceipt(hbid model.HeartbeatID, tRecv model.UnixMs) bool {
	tt, ok := t.inflight[hbid]
	if !ok {
		return false
	}
	tt.recv = tRecv
	tt.received = true
	t.inflight[hbid] = tt
	return true
}

// RecordLatency turns the client-reported round trip for hbid into a
// sample: tLat minus the forward leg, floored at zero. All in-flight
// bookkeeping is discarded once a sample is taken.
func (t *LatencyTracker) RecordLatency(hbid model.HeartbeatID, tLat uint32) (uint32, bool) {
	tt, ok := t.inflight[hbid]
	if !ok {
		return 0, false
	}
	fwd, ok := tt.forward()
	if !ok {
		return 0, false
	}

	var sample uint32
	if tLat > fwd {
		sample = tLat - fwd
	}

	copy(t.samples[:], t.samples[1:])
	t.samples[LatencyWindow-1] = sample
	clear(t.inflight)
	return sample, true
}

// Latency is the mean of the rolling window in milliseconds
func (t *LatencyTracker) Latency() uint32 {
	var sum uint64
	for _, s := range t.samples {
		sum += uint64(s)
	}
	return uint32(sum / LatencyWindow)
}

// Samples returns a copy of the window, oldest first
func (t *LatencyTracker) Samples() [LatencyWindow]uint32 {
	return t.samples
}

// Pending is the number of heartbeats awaiting a latency report
func (t *LatencyTracker) Pending() int {
	return len(t.inflight)
}

func clampUint32(v uint64) uint32 {
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}
