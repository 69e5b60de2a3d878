package trace

import (
	"context"
	"fmt"
	"time"
)

// StartHeartbeat emits a heartbeat event every interval until the returned
// stop function is called. Each beat reports how many file spans are open,
// so a stuck document shows up as beats with a constant non-zero count.
func StartHeartbeat(ctx context.Context, interval time.Duration) (stop func()) {
	s := sessionFrom(ctx)
	if s == nil || s.tracer.Level() == LevelOff || interval <= 0 {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		beat := 0
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				beat++
				s.emit(Event{
					Time:   now,
					Kind:   KindHeartbeat,
					Scope:  ScopeDriver,
					Name:   "heartbeat",
					Detail: fmt.Sprintf("#%d, %d file(s) in flight", beat, s.openFiles.Load()),
				})
			}
		}
	}()
	return func() {
		cancel()
		<-finished
	}
}
