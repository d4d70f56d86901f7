package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	"github.com/azkv-tui/azkv/internal/app"
	"github.com/azkv-tui/azkv/internal/event"
	"github.com/azkv-tui/azkv/internal/input"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	File    string
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envConfig       = "AZKV_CONFIG"
	envProfile      = "AZKV_PROFILE"
	envTaskDuration = "AZKV_TASK_DURATION"
	envQueueSize    = "AZKV_QUEUE_SIZE"
	envTrace        = "AZKV_TRACE"
	envLogFile      = "AZKV_LOG_FILE"
)

const (
	DefaultTaskDuration = 5 * time.Second
	DefaultQueueSize    = event.DefaultCapacity
)

var (
	ErrInvalidQueueSize    = errors.New("queue size must be > 0")
	ErrInvalidTaskDuration = errors.New("task duration must be >= 0")
	ErrNoKeys              = errors.New("key binding list is empty")
	ErrKeyConflict         = errors.New("key bound twice")
)

// Flags holds the command line values registered by AddFlags.
type Flags struct {
	fs           *pflag.FlagSet
	configPath   string
	profile      string
	taskDuration time.Duration
	queueSize    int
	trace        bool
	logFile      string
}

// AddFlags registers the application flags on fs.
func AddFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.configPath, "config", "", "path to the TOML config file")
	fs.StringVar(&f.profile, "profile", "", "path to the Azure CLI azureProfile.json")
	fs.DurationVar(&f.taskDuration, "task-duration", DefaultTaskDuration, "how long the demo background task runs")
	fs.IntVar(&f.queueSize, "queue-size", DefaultQueueSize, "capacity of the message and task request queues")
	fs.BoolVar(&f.trace, "trace", false, "enable verbose JSON trace logging")
	fs.StringVar(&f.logFile, "log-file", "", "path to the log file")
	return f
}

// LoadArgs parses args on a standalone flag set and resolves them against
// environ. It allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	fs := pflag.NewFlagSet("azkv", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	flags := AddFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return flags.Resolve(args, environ)
}

type fileConfig struct {
	Profile      string    `toml:"profile"`
	TaskDuration *duration `toml:"task_duration"`
	QueueSize    *int      `toml:"queue_size"`
	Trace        *bool     `toml:"trace"`
	LogFile      string    `toml:"log_file"`
	Keys         struct {
		Quit   []string `toml:"quit"`
		Launch []string `toml:"launch"`
	} `toml:"keys"`
}

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Resolve merges defaults, the config file, the environment and the flags
// that were set explicitly, in that order of precedence.
func (f *Flags) Resolve(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)
	cfg := Config{
		App: app.Config{
			TaskDuration: DefaultTaskDuration,
			QueueSize:    DefaultQueueSize,
			QuitKeys:     []string{"q", "ctrl+c"},
			LaunchKeys:   []string{"t"},
		},
		Args: append([]string(nil), args...),
	}

	path, explicit := f.configPath, f.fs.Changed("config")
	if !explicit {
		if v, ok := env[envConfig]; ok && v != "" {
			path, explicit = v, true
		} else {
			path = defaultConfigPath()
		}
	}
	if path != "" {
		if err := applyFile(&cfg, path, explicit); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg, env); err != nil {
		return Config{}, err
	}

	if f.fs.Changed("profile") {
		cfg.App.ProfilePath = f.profile
	}
	if f.fs.Changed("task-duration") {
		cfg.App.TaskDuration = f.taskDuration
	}
	if f.fs.Changed("queue-size") {
		cfg.App.QueueSize = f.queueSize
	}
	if f.fs.Changed("trace") {
		cfg.Logging.Trace = f.trace
	}
	if f.fs.Changed("log-file") {
		cfg.Logging.FilePath = f.logFile
	}

	cfg.Flags = map[string]string{
		"config":       cfg.File,
		"profile":      cfg.App.ProfilePath,
		"taskDuration": cfg.App.TaskDuration.String(),
		"queueSize":    strconv.Itoa(cfg.App.QueueSize),
		"trace":        strconv.FormatBool(cfg.Logging.Trace),
		"logFile":      cfg.Logging.FilePath,
		"quitKeys":     strings.Join(cfg.App.QuitKeys, ","),
		"launchKeys":   strings.Join(cfg.App.LaunchKeys, ","),
	}
	return cfg, nil
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "azkv", "config.toml")
}

// applyFile reads the TOML file at path. A missing file is only an error when
// the user named it.
func applyFile(cfg *Config, path string, explicit bool) error {
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("read config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	cfg.File = path
	if fc.Profile != "" {
		cfg.App.ProfilePath = fc.Profile
	}
	if fc.TaskDuration != nil {
		cfg.App.TaskDuration = fc.TaskDuration.Duration
	}
	if fc.QueueSize != nil {
		cfg.App.QueueSize = *fc.QueueSize
	}
	if fc.Trace != nil {
		cfg.Logging.Trace = *fc.Trace
	}
	if fc.LogFile != "" {
		cfg.Logging.FilePath = fc.LogFile
	}
	if md.IsDefined("keys", "quit") {
		cfg.App.QuitKeys = fc.Keys.Quit
	}
	if md.IsDefined("keys", "launch") {
		cfg.App.LaunchKeys = fc.Keys.Launch
	}
	return nil
}

func applyEnv(cfg *Config, env map[string]string) error {
	if v, ok := env[envProfile]; ok && v != "" {
		cfg.App.ProfilePath = v
	}
	if v, ok := nonEmpty(env, envTaskDuration); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envTaskDuration, err)
		}
		cfg.App.TaskDuration = d
	}
	if v, ok := nonEmpty(env, envQueueSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envQueueSize, err)
		}
		cfg.App.QueueSize = n
	}
	if v, ok := nonEmpty(env, envTrace); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envTrace, err)
		}
		cfg.Logging.Trace = b
	}
	if v, ok := env[envLogFile]; ok && v != "" {
		cfg.Logging.FilePath = v
	}
	return nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func nonEmpty(env map[string]string, key string) (string, bool) {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// Validate ensures the configuration can run.
func Validate(cfg Config) error {
	if cfg.App.QueueSize <= 0 {
		return fmt.Errorf("%w (got %d)", ErrInvalidQueueSize, cfg.App.QueueSize)
	}
	if cfg.App.TaskDuration < 0 {
		return fmt.Errorf("%w (got %s)", ErrInvalidTaskDuration, cfg.App.TaskDuration)
	}
	if len(cfg.App.QuitKeys) == 0 {
		return fmt.Errorf("quit: %w", ErrNoKeys)
	}
	if len(cfg.App.LaunchKeys) == 0 {
		return fmt.Errorf("launch: %w", ErrNoKeys)
	}
	return validateKeys(cfg.App.QuitKeys, cfg.App.LaunchKeys)
}

// validateKeys rejects a key claimed by more than one action. The reader
// consumes quit and launch keys before the UI sees them, so a clash would
// silently disable the other binding.
func validateKeys(quit, launch []string) error {
	owner := map[string]string{}
	display := input.DefaultKeyMap()
	for _, b := range []struct {
		action string
		keys   []string
	}{
		{"help", display.Help.Keys()},
		{"next subscription", display.NextSubscription.Keys()},
		{"previous subscription", display.PrevSubscription.Keys()},
		{"quit", quit},
		{"launch", launch},
	} {
		for _, k := range b.keys {
			if prev, ok := owner[k]; ok {
				return fmt.Errorf("%w: %q is used by %s and %s", ErrKeyConflict, k, prev, b.action)
			}
			owner[k] = b.action
		}
	}
	return nil
}
