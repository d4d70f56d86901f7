package events

import "github.com/azkv-tui/azkv/internal/logging"

type AppTracer struct{}

var App = AppTracer{}

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Profile(path string, subscriptions int, defaultID string) {
	logging.Trace("app.profile", map[string]interface{}{
		"path":          path,
		"subscriptions": subscriptions,
		"default":       defaultID,
	})
}

func (AppTracer) UIStopped(activeTasks int) {
	logging.Trace("app.ui-stopped", map[string]interface{}{"activeTasks": activeTasks})
}

func (AppTracer) Drained(spawned, failed int) {
	logging.Trace("app.drained", map[string]interface{}{"spawned": spawned, "failed": failed})
}

func (AppTracer) Fatal(err error) {
	if err == nil {
		return
	}
	logging.Trace("app.fatal", map[string]interface{}{"error": err.Error()})
}
