package stream

import (
	"context"
	"time"
)

// Run drives e from a ticker until the session finishes or ctx is cancelled.
// Input received on inputs is applied on the same goroutine as frames. A
// cancelled context ends the session and returns the context error.
func Run(ctx context.Context, e *Engine, interval time.Duration, inputs <-chan Interaction) (Result, error) {
	if interval <= 0 {
		interval = e.cfg.NominalFrame
	}
	if e.phase == Idle {
		if err := e.Start(time.Now()); err != nil {
			return Result{}, err
		}
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if res, ok := e.Result(); ok {
			return res, nil
		}
		select {
		case <-ctx.Done():
			e.End()
			res, _ := e.Result()
			return res, ctx.Err()
		case in, ok := <-inputs:
			if !ok {
				inputs = nil
				continue
			}
			e.HandleVariantInteraction(in)
		case now := <-ticker.C:
			e.Frame(now)
		}
	}
}
