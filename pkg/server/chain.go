package server

import (
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// Serial composes steps into a single handler that runs them in order
// against the same session and argument map. The first failing step stops
// the chain; later steps never run. Updates already sent by earlier steps
// stand, there is no rollback.
func Serial(steps ...HandlerFunc) HandlerFunc {
	return func(s *Session, args map[string]any) error {
		for _, step := range steps {
			if err := step(s, args); err != nil {
				return err
			}
		}
		return nil
	}
}

// Parallel composes steps into a single handler that runs them
// concurrently and waits for every one to finish. Unlike Serial, a failing
// step never cuts the others short: each runs to completion, and the first
// error observed is returned after the join.
//
// Steps share the session's state map, so the usual read-modify-write
// hazard applies between them.
func Parallel(steps ...HandlerFunc) HandlerFunc {
	return func(s *Session, args map[string]any) error {
		var g errgroup.Group
		for _, step := range steps {
			step := step
			g.Go(func() error {
				return runStep(step, s, args)
			})
		}
		return g.Wait()
	}
}

// runStep converts a step panic into an error. Parallel steps run outside
// the dispatcher's own recovery, so without this a panicking step would
// take the whole process down.
func runStep(step HandlerFunc, s *Session, args map[string]any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HandlerError{SessionID: s.ID, Panic: r, Stack: debug.Stack()}
		}
	}()
	return step(s, args)
}
