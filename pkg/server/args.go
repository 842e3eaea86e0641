package server

import "github.com/glint-ui/glint/pkg/protocol"

// mergeArgs builds the final argument map for a handler invocation.
//
// Precedence, lowest to highest:
//
//  1. arguments bound at registration
//  2. declared client props, resolved from the event's captured values
//     (falling back to the session's prop cache when the event omits one)
//  3. declared raw-event fields
//
// Later layers overwrite earlier ones on key collision. Declared keys the
// client did not supply come through as nil, so handlers can distinguish
// "never captured" from "empty string".
func mergeArgs(s *Session, cb *Callback, ev *protocol.EventMessage) map[string]any {
	args := make(map[string]any, len(cb.Bound)+len(cb.Props)+len(cb.Events))

	for k, v := range cb.Bound {
		args[k] = v
	}

	for _, k := range cb.Props {
		if v, ok := ev.Props[k]; ok {
			args[k] = v
			continue
		}
		s.propMu.RLock()
		v, ok := s.props[k]
		s.propMu.RUnlock()
		if ok {
			args[k] = v
		} else {
			args[k] = nil
		}
	}

	for _, k := range cb.Events {
		if v, ok := ev.RawEvent[k]; ok {
			args[k] = v
		} else {
			args[k] = nil
		}
	}

	return args
}
