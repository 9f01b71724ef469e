package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"sort"
	"time"
)

// State is the lifecycle state of a Manager.
type State int

// Manager states. A Manager moves from StateUnresolved through StateResolving
// to either StateResolved or StateFailed and never leaves those.
const (
	StateUnresolved State = iota
	StateResolving
	StateResolved
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateResolving:
		return "resolving"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ManagerOptions configures a Manager. Zero values select the defaults noted
// on each field.
type ManagerOptions struct {
	// Registry defaults to DefaultRegistry().
	Registry *Registry

	// Environ defaults to os.Environ.
	Environ func() []string

	// OverrideFile is optional; an empty path means no file.
	OverrideFile string

	// Logger receives downgraded violations and warnings. Defaults to slog.Default().
	Logger *slog.Logger
}

// Manager resolves configuration once and serves the resulting snapshot.
//
// Resolve must complete before the Manager is shared; after that every
// accessor is safe for concurrent use because the snapshot never changes.
type Manager struct {
	registry     *Registry
	environ      func() []string
	overrideFile string
	logger       *slog.Logger

	state    State
	snapshot *ResolvedConfig
	err      error
}

// NewManager creates an unresolved Manager.
func NewManager(opts ManagerOptions) *Manager {
	m := &Manager{
		registry:     opts.Registry,
		environ:      opts.Environ,
		overrideFile: opts.OverrideFile,
		logger:       opts.Logger,
		state:        StateUnresolved,
	}
	if m.registry == nil {
		m.registry = DefaultRegistry()
	}
	if m.environ == nil {
		m.environ = os.Environ
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	return m.state
}

// Resolve reads all sources, validates every registered option and builds the
// snapshot. After a success it returns the same snapshot without reading the
// sources again; after a failure it returns the same error.
//
// Fatal errors are *FileReadError, *UnknownEnvironmentError and, in
// production only, *ValidationReport.
func (m *Manager) Resolve() (*ResolvedConfig, error) {
	switch m.state {
	case StateResolved:
		return m.snapshot, nil
	case StateFailed:
		return nil, m.err
	case StateResolving:
		panic("config: Resolve called while resolution is in progress")
	}

	m.state = StateResolving
	snapshot, err := m.resolve()
	if err != nil {
		m.state = StateFailed
		m.err = err
		return nil, err
	}

	m.snapshot = snapshot
	m.state = StateResolved
	return snapshot, nil
}

func (m *Manager) resolve() (*ResolvedConfig, error) {
	file, err := ReadOverrideFile(m.overrideFile)
	if err != nil {
		m.logger.Error("failed to read configuration override file",
			"path", m.overrideFile,
			"error", err)
		return nil, err
	}
	env := ReadEnvironment(m.registry, m.environ())
	raw := Merge(file, env)

	environment, err := ResolveEnvironment(raw)
	if err != nil {
		m.logger.Error("failed to resolve environment", "error", err)
		return nil, err
	}

	res := ValidateAll(m.registry, raw, environment)

	cfg := &ResolvedConfig{
		env:          environment,
		registry:     m.registry,
		values:       res.Values,
		sources:      make(map[string]string, len(res.Values)),
		placeholders: make(map[string]bool),
		warnings:     res.Warnings,
		report:       res.Report,
	}
	for key := range res.Values {
		cfg.sources[key] = source(key, file, env)
		if cfg.sources[key] == "" {
			cfg.sources[key] = "default"
		}
	}

	for _, w := range res.Warnings {
		m.logger.Warn("configuration warning", "environment", environment.String(), "warning", w)
	}

	if !res.Report.Empty() {
		if environment == Production {
			m.logger.Error("configuration validation failed",
				"environment", environment.String(),
				"error_count", len(res.Report.Errors),
				"keys", res.Report.Keys())
			return nil, res.Report
		}
		m.downgrade(cfg)
	}

	m.logger.Info("configuration resolved",
		"environment", environment.String(),
		"options", m.registry.Len(),
		"warnings", len(cfg.warnings))
	return cfg, nil
}

// downgrade turns the report into warnings and gives every offending option a
// usable value: its environment default when that is valid, else a sentinel.
func (m *Manager) downgrade(cfg *ResolvedConfig) {
	for _, e := range cfg.report.Errors {
		m.logger.Warn("configuration problem ignored outside production",
			"environment", cfg.env.String(),
			"key", e.Key,
			"reason", string(e.Reason),
			"message", e.Message)
		cfg.warnings = append(cfg.warnings, e.Error())
	}

	for _, key := range cfg.report.Keys() {
		opt, ok := m.registry.Lookup(key)
		if !ok {
			continue
		}
		if v, ok := validDefault(opt, cfg.env); ok {
			cfg.values[key] = v
			cfg.sources[key] = "default"
			continue
		}
		cfg.values[key] = placeholder(opt)
		cfg.sources[key] = "placeholder"
		cfg.placeholders[key] = true
	}
	sort.Strings(cfg.warnings)
}

func validDefault(opt Option, env Environment) (any, bool) {
	text, ok := opt.Default(env)
	if !ok {
		return nil, false
	}
	v, err := Coerce(text, opt.Type)
	if err != nil || len(Validate(opt, v, true, env)) > 0 {
		return nil, false
	}
	return v, true
}

// Snapshot returns the resolved snapshot or ErrNotResolved.
func (m *Manager) Snapshot() (*ResolvedConfig, error) {
	if m.state != StateResolved {
		return nil, fmt.Errorf("%w: manager is %s", ErrNotResolved, m.state)
	}
	return m.snapshot, nil
}

// mustSnapshot backs the typed accessors. Reading configuration from a
// Manager that has not resolved is a programming error.
func (m *Manager) mustSnapshot() *ResolvedConfig {
	if m.state != StateResolved {
		panic(fmt.Sprintf("config: accessor used while manager is %s", m.state))
	}
	return m.snapshot
}

// Environment returns the resolved environment.
func (m *Manager) Environment() Environment { return m.mustSnapshot().Environment() }

// String returns a string option.
func (m *Manager) String(key string) string { return m.mustSnapshot().String(key) }

// Bool returns a boolean option.
func (m *Manager) Bool(key string) bool { return m.mustSnapshot().Bool(key) }

// Int returns an integer option.
func (m *Manager) Int(key string) int { return m.mustSnapshot().Int(key) }

// Duration returns a duration option.
func (m *Manager) Duration(key string) time.Duration { return m.mustSnapshot().Duration(key) }

// List returns a list option.
func (m *Manager) List(key string) []string { return m.mustSnapshot().List(key) }

// URL returns a URL option.
func (m *Manager) URL(key string) *url.URL { return m.mustSnapshot().URL(key) }

// Warnings returns the snapshot's warnings.
func (m *Manager) Warnings() []string { return m.mustSnapshot().Warnings() }

// Summary renders the snapshot for humans with secrets masked.
func (m *Manager) Summary() string { return m.mustSnapshot().Summary() }
