package main

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/azkv-tui/azkv/internal/app"
	"github.com/azkv-tui/azkv/internal/config"
	"github.com/azkv-tui/azkv/internal/logging"
)

func TestCollectTTYDetailsIncludesStandardDescriptors(t *testing.T) {
	info := collectTTYDetails()
	if len(info.Probes) != 3 {
		t.Fatalf("expected 3 probe entries, got %d", len(info.Probes))
	}
	expected := []string{"stdin", "stdout", "stderr"}
	for i, name := range expected {
		if info.Probes[i].Name != name {
			t.Fatalf("expected probe %d name %q, got %q", i, name, info.Probes[i].Name)
		}
	}
}

func TestStartupTracePayloadIncludesFlags(t *testing.T) {
	cfg := config.Config{
		App: app.Config{
			ProfilePath:  "/home/me/.azure/azureProfile.json",
			TaskDuration: 2 * time.Second,
			QueueSize:    10,
			Version:      "1.0.0",
		},
		Logging: config.Logging{
			FilePath: "trace.log",
			Trace:    true,
		},
		Flags: map[string]string{
			"profile":   "/home/me/.azure/azureProfile.json",
			"queueSize": "10",
		},
		Args: []string{"--trace", "--log-file", "trace.log"},
	}

	payload := startupTracePayload(cfg)

	flagsValue, ok := payload["flags"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected flags map in payload")
	}
	if flagsValue["profile"] != "/home/me/.azure/azureProfile.json" {
		t.Fatalf("expected profile flag, got %v", flagsValue["profile"])
	}
	if flagsValue["queueSize"] != "10" {
		t.Fatalf("expected queue size 10, got %v", flagsValue["queueSize"])
	}
	if flagsValue["trace"] != true {
		t.Fatalf("expected trace flag true, got %v", flagsValue["trace"])
	}
	if flagsValue["logFile"] != "trace.log" {
		t.Fatalf("expected log file trace.log, got %v", flagsValue["logFile"])
	}
	if payload["version"] != "1.0.0" {
		t.Fatalf("expected version in payload, got %v", payload["version"])
	}
	if _, ok := payload["tty"].(ttyDetails); !ok {
		t.Fatalf("expected tty details in payload")
	}
	if cfgValue, ok := payload["config"].(config.Config); !ok {
		t.Fatalf("expected config in payload")
	} else if !reflect.DeepEqual(cfgValue.App, cfg.App) {
		t.Fatalf("expected app config %#v, got %#v", cfg.App, cfgValue.App)
	}
}

type launchRecorder struct {
	calls int
	cfg   app.Config
	err   error
}

func (l *launchRecorder) launch(cfg app.Config) error {
	l.calls++
	l.cfg = cfg
	return l.err
}

func runMain(t *testing.T, args []string, environ []string, rec *launchRecorder) (int, string, string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Cleanup(func() {
		logging.Configure("")
		logging.SetTraceEnabled(false)
	})
	var stdout, stderr strings.Builder
	code := execute(args, environ, &stdout, &stderr, rec.launch)
	return code, stdout.String(), stderr.String()
}

func logArgs(t *testing.T) []string {
	return []string{"--log-file", filepath.Join(t.TempDir(), "azkv.log")}
}

func TestExecuteRunsApp(t *testing.T) {
	rec := &launchRecorder{}
	args := append(logArgs(t), "--task-duration", "250ms")
	code, _, stderr := runMain(t, args, []string{"AZKV_PROFILE=/tmp/profile.json"}, rec)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d (%s)", code, stderr)
	}
	if rec.calls != 1 {
		t.Fatalf("expected one launch, got %d", rec.calls)
	}
	if rec.cfg.TaskDuration != 250*time.Millisecond || rec.cfg.ProfilePath != "/tmp/profile.json" {
		t.Fatalf("unexpected app config %#v", rec.cfg)
	}
	if rec.cfg.Version == "" {
		t.Fatalf("expected a version to be set")
	}
}

func TestExecuteConfigErrorsExitTwo(t *testing.T) {
	cases := map[string][]string{
		"unknown flag":  {"--socket", "/tmp/x"},
		"invalid value": {"--queue-size", "0"},
		"bad duration":  {"--task-duration", "later"},
		"extra args":    {"vault"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			rec := &launchRecorder{}
			code, _, stderr := runMain(t, append(logArgs(t), args...), nil, rec)
			if code != exitConfig {
				t.Fatalf("expected exit 2, got %d", code)
			}
			if rec.calls != 0 {
				t.Fatalf("app must not start on configuration errors")
			}
			if !strings.Contains(stderr, "Configuration error") {
				t.Fatalf("expected configuration error message, got %q", stderr)
			}
		})
	}
}

func TestExecuteRuntimeErrorExitsOne(t *testing.T) {
	rec := &launchRecorder{err: errors.New("read terminal event: tty gone")}
	code, _, stderr := runMain(t, logArgs(t), nil, rec)
	if code != exitRuntime {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr, "Error: read terminal event: tty gone") {
		t.Fatalf("unexpected stderr %q", stderr)
	}
}

func TestVersionCommand(t *testing.T) {
	old := version
	version = "1.4.2"
	t.Cleanup(func() { version = old })

	rec := &launchRecorder{}
	code, stdout, _ := runMain(t, []string{"version"}, nil, rec)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if stdout != "azkv 1.4.2\n" {
		t.Fatalf("unexpected version output %q", stdout)
	}
	if rec.calls != 0 {
		t.Fatalf("version must not start the app")
	}
}
