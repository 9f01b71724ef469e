package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
)

// validate runs the tag half of every Rule.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Rule checks a coerced value. A value is accepted only when it satisfies both
// Tag (a go-playground/validator tag such as "gt=0,lt=65536") and Func, when
// those are set.
type Rule struct {
	Tag     string
	Func    func(value any, env Environment) bool
	Message string
}

// Accepts reports whether value passes the rule in env.
func (r *Rule) Accepts(value any, env Environment) bool {
	if r == nil {
		return true
	}
	if r.Tag != "" {
		if err := validate.Var(value, r.Tag); err != nil {
			return false
		}
	}
	if r.Func != nil && !r.Func(value, env) {
		return false
	}
	return true
}

// Option describes one configuration setting.
type Option struct {
	// Key is both the registry key and the environment variable name.
	Key  string
	Type ValueType

	// Defaults holds the textual default per environment. A missing entry
	// means there is no default in that environment.
	Defaults map[Environment]string

	// RequiredIn lists environments where the option must end up with a value.
	RequiredIn []Environment

	// Validator rejections are validation errors.
	Validator *Rule

	// Advisory rejections are reported as warnings only.
	Advisory *Rule

	// Secret values are masked in summaries and logs.
	Secret bool

	Description string
}

// Default returns the textual default for env.
func (o Option) Default(env Environment) (string, bool) {
	v, ok := o.Defaults[env]
	return v, ok
}

// Required reports whether the option must have a value in env.
func (o Option) Required(env Environment) bool {
	return slices.Contains(o.RequiredIn, env)
}

func (o Option) clone() Option {
	c := o
	if o.Defaults != nil {
		c.Defaults = make(map[Environment]string, len(o.Defaults))
		for env, v := range o.Defaults {
			c.Defaults[env] = v
		}
	}
	c.RequiredIn = slices.Clone(o.RequiredIn)
	return c
}

// Registry is the immutable table of known options.
type Registry struct {
	options []Option
	index   map[string]int
}

// NewRegistry builds a registry from opts, reporting every definition problem
// at once.
func NewRegistry(opts ...Option) (*Registry, error) {
	r := &Registry{
		options: make([]Option, 0, len(opts)),
		index:   make(map[string]int, len(opts)),
	}

	var errs error
	for _, opt := range opts {
		if err := checkOption(opt); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if _, dup := r.index[opt.Key]; dup {
			errs = multierr.Append(errs, fmt.Errorf("option %s: duplicate key", opt.Key))
			continue
		}
		r.index[opt.Key] = len(r.options)
		r.options = append(r.options, opt.clone())
	}
	if errs != nil {
		return nil, fmt.Errorf("invalid option registry: %w", errs)
	}
	return r, nil
}

func checkOption(opt Option) error {
	if opt.Key == "" {
		return errors.New("option with empty key")
	}
	if opt.Key == EnvironmentKey {
		return fmt.Errorf("option %s: key is reserved for the environment selector", opt.Key)
	}
	if !opt.Type.valid() {
		return fmt.Errorf("option %s: unknown type %s", opt.Key, opt.Type)
	}

	var errs error
	for env, raw := range opt.Defaults {
		if !env.Valid() {
			errs = multierr.Append(errs, fmt.Errorf("option %s: default for unknown environment %q", opt.Key, env))
			continue
		}
		if _, err := Coerce(raw, opt.Type); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("option %s: %s default: %w", opt.Key, env, err))
		}
	}
	for _, env := range opt.RequiredIn {
		if !env.Valid() {
			errs = multierr.Append(errs, fmt.Errorf("option %s: required in unknown environment %q", opt.Key, env))
			continue
		}
		if _, ok := opt.Defaults[env]; ok {
			errs = multierr.Append(errs, fmt.Errorf("option %s: required in %s but has a default there", opt.Key, env))
		}
	}
	return errs
}

// AllOptions returns every option in registration order.
func (r *Registry) AllOptions() []Option {
	out := make([]Option, len(r.options))
	for i, opt := range r.options {
		out[i] = opt.clone()
	}
	return out
}

// Lookup returns the option registered under key.
func (r *Registry) Lookup(key string) (Option, bool) {
	i, ok := r.index[key]
	if !ok {
		return Option{}, false
	}
	return r.options[i].clone(), true
}

// Len returns the number of registered options.
func (r *Registry) Len() int {
	return len(r.options)
}
