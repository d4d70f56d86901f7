package events

import "github.com/azkv-tui/azkv/internal/logging"

type UITracer struct{}

var UI = UITracer{}

func (UITracer) Interaction(key string) {
	logging.Trace("ui.interaction", map[string]interface{}{"key": key})
}

func (UITracer) Quit(reason string) {
	logging.Trace("ui.quit", map[string]interface{}{"reason": reason})
}

func (UITracer) Resize(width, height int) {
	logging.Trace("ui.resize", map[string]interface{}{"width": width, "height": height})
}
