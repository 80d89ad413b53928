/*
elapsed.go - Live work-timer hub

PURPOSE:
  Owns one worktime.Refresher per employee with an open session and keeps
  the latest computed display snapshot for the elapsed endpoint. This is
  the SPA's 1-second timer moved behind the API.

LIFECYCLE:
  - Clock-in starts the employee's refresher (stop-then-start, so a stale
    ticker can never survive a restart)
  - Clock-out stops it
  - A tick that observes a closed session or the weekly cap schedules its
    own stop; with no ticker running, the endpoint recomputes on demand
  - Server shutdown stops every refresher

  Every start has exactly one matching stop on every exit path.

SEE ALSO:
  - worktime/refresher.go: The ticker itself
  - handlers.go: Clock-in/clock-out and elapsed endpoints
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/workforce-engine/worktime"
)

// ElapsedHub tracks live display refreshers per employee.
type ElapsedHub struct {
	Worktime *worktime.Service

	mu         sync.RWMutex
	refreshers map[string]*worktime.Refresher
	latest     map[string]ElapsedDTO
}

func NewElapsedHub(wt *worktime.Service) *ElapsedHub {
	return &ElapsedHub{
		Worktime:   wt,
		refreshers: make(map[string]*worktime.Refresher),
		latest:     make(map[string]ElapsedDTO),
	}
}

// StartFor begins (or restarts) the 1-second refresher for an employee.
func (h *ElapsedHub) StartFor(employeeID string) {
	h.mu.Lock()
	ref, ok := h.refreshers[employeeID]
	if !ok {
		ref = worktime.NewRefresher(func(now time.Time) {
			h.refresh(employeeID, now)
		})
		h.refreshers[employeeID] = ref
	}
	h.mu.Unlock()

	// Start cancels any prior ticker for this employee first.
	ref.Start()
	h.refresh(employeeID, time.Now())
}

// StopFor cancels the employee's refresher. Idempotent.
func (h *ElapsedHub) StopFor(employeeID string) {
	h.mu.RLock()
	ref := h.refreshers[employeeID]
	h.mu.RUnlock()
	if ref != nil {
		ref.Stop()
	}
}

// StopAll cancels every refresher. Called on server shutdown.
func (h *ElapsedHub) StopAll() {
	h.mu.RLock()
	refs := make([]*worktime.Refresher, 0, len(h.refreshers))
	for _, ref := range h.refreshers {
		refs = append(refs, ref)
	}
	h.mu.RUnlock()

	for _, ref := range refs {
		ref.Stop()
	}
	log.Println("[Elapsed] All refreshers stopped")
}

// Snapshot returns the current display snapshot. The cached entry is only
// trusted while its refresher is ticking; with no live ticker the record may
// have changed underneath (clock-out, scenario load, reset), so recompute.
func (h *ElapsedHub) Snapshot(ctx context.Context, employeeID string, now time.Time) (ElapsedDTO, error) {
	h.mu.RLock()
	dto, ok := h.latest[employeeID]
	ref := h.refreshers[employeeID]
	h.mu.RUnlock()

	if ok && ref != nil && ref.Running() {
		dto.LiveRefresher = true
		return dto, nil
	}
	return h.compute(ctx, employeeID, now)
}

// refresh is the per-tick callback: recompute and publish.
func (h *ElapsedHub) refresh(employeeID string, now time.Time) {
	dto, err := h.compute(context.Background(), employeeID, now)
	if err != nil {
		log.Printf("[Elapsed] Refresh failed for %s: %v", employeeID, err)
		return
	}

	h.mu.Lock()
	h.latest[employeeID] = dto
	h.mu.Unlock()

	// A closed session or a hit cap means the display is frozen; the ticker
	// has nothing further to do. Stop from outside the tick goroutine.
	if dto.SessionState != worktime.StateOpen.String() || dto.CapReached {
		go h.StopFor(employeeID)
	}
}

func (h *ElapsedHub) compute(ctx context.Context, employeeID string, now time.Time) (ElapsedDTO, error) {
	rec, err := h.Worktime.Today(ctx, employeeID, now)
	if err != nil {
		return ElapsedDTO{}, err
	}
	snap, err := h.Worktime.Weekly(ctx, employeeID, now)
	if err != nil {
		return ElapsedDTO{}, err
	}

	elapsed := worktime.ComputeElapsed(rec, snap.Accumulated, !snap.CapReached, now)

	h.mu.RLock()
	ref := h.refreshers[employeeID]
	h.mu.RUnlock()

	return ElapsedDTO{
		Display:       worktime.FormatElapsed(elapsed),
		ElapsedMs:     elapsed.Milliseconds(),
		WeeklyMs:      snap.Accumulated.Milliseconds(),
		CapReached:    snap.CapReached,
		SessionState:  worktime.StateOf(rec).String(),
		RefreshedAt:   now.Format(time.RFC3339),
		LiveRefresher: ref != nil && ref.Running(),
	}, nil
}
