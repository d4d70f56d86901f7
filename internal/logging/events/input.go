package events

import "github.com/azkv-tui/azkv/internal/logging"

type InputTracer struct{}

var Input = InputTracer{}

func (InputTracer) Quit(key string) {
	logging.Trace("input.quit", map[string]interface{}{"key": key})
}

func (InputTracer) Launch(key, kind string) {
	logging.Trace("input.launch", map[string]interface{}{"key": key, "kind": kind})
}

func (InputTracer) Forward(key string) {
	logging.Trace("input.forward", map[string]interface{}{"key": key})
}

func (InputTracer) Stop(reason string) {
	logging.Trace("input.stop", map[string]interface{}{"reason": reason})
}
