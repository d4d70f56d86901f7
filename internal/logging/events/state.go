package events

import "github.com/azkv-tui/azkv/internal/logging"

type StateTracer struct{}

var State = StateTracer{}

func (StateTracer) Delta(counter string, delta, value int) {
	logging.Trace("state.delta", map[string]interface{}{"counter": counter, "delta": delta, "value": value})
}

func (StateTracer) Underflow(counter string, delta, before int) {
	logging.Trace("state.underflow", map[string]interface{}{"counter": counter, "delta": delta, "before": before})
}

func (StateTracer) Subscription(id string) {
	logging.Trace("state.subscription", map[string]interface{}{"id": id})
}
