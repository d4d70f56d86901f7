package events

import "github.com/azkv-tui/azkv/internal/logging"

type TaskTracer struct{}

var Task = TaskTracer{}

func (TaskTracer) Spawn(id, kind string, outstanding int) {
	logging.Trace("task.spawn", map[string]interface{}{"id": id, "kind": kind, "outstanding": outstanding})
}

func (TaskTracer) Skip(id, kind string) {
	logging.Trace("task.skip", map[string]interface{}{"id": id, "kind": kind})
}

func (TaskTracer) Done(id, kind string, err error) {
	payload := map[string]interface{}{"id": id, "kind": kind}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("task.done", payload)
}

func (TaskTracer) Unknown(kind string) {
	logging.Trace("task.unknown", map[string]interface{}{"kind": kind})
}

func (TaskTracer) Drain(outstanding int) {
	logging.Trace("task.drain", map[string]interface{}{"outstanding": outstanding})
}
