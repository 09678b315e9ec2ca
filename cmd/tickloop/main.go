package main

import (
	"fmt"

	"tickloop/internal/job"
	"tickloop/internal/sched"
)

func main() {
	// Read the configuration
	cfg := sched.Load("config.yml")
	fmt.Printf("Loaded config: %+v\n", cfg)

	s := sched.New(cfg)
	if cfg.TraceCSV != "" {
		if err := s.EnableCSVTrace(cfg.TraceCSV); err != nil {
			fmt.Println("trace disabled:", err)
		}
	}
	defer s.Close()

	rec := job.NewRecorder()

	// The classic ordering demo: sync log, zero-delay timer, microtask,
	// sync log. The microtask runs before the timer even though it was
	// submitted after it.
	s.RunSync(func() error {
		rec.Record("1")
		s.SetTimer(rec.Log("2"), 0)
		s.QueueMicrotask(rec.Log("3"))
		rec.Record("4")
		return nil
	})
	ticks := s.RunUntilQuiescent()

	fmt.Printf("observed order %v after %d tick(s)\n", rec.Labels(), ticks)
}
