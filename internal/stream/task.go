package stream

import "time"

// task is a periodic job run on the frame clock, so it shares the engine's
// single writer and stops with it.
type task struct {
	period time.Duration
	acc    time.Duration
	run    func()
}

func (e *Engine) runTasks(dt time.Duration) {
	for _, t := range e.tasks {
		if t.period <= 0 {
			continue
		}
		t.acc += dt
		for t.acc >= t.period {
			t.acc -= t.period
			t.run()
		}
	}
}
