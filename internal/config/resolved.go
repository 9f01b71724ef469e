package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

// placeholder returns the sentinel stored for an option that has no usable
// value outside production. Sentinels are chosen so that using them fails:
// "<unset:KEY>" strings are rejected by consumers that check formats, unset://
// URLs have no driver, and -1 is not a valid size, port or cost.
func placeholder(opt Option) any {
	switch opt.Type {
	case TypeBool:
		return false
	case TypeInt:
		return -1
	case TypeDuration:
		return time.Duration(0)
	case TypeList:
		return []string{}
	case TypeURL:
		return url.URL{Scheme: "unset", Host: strings.ToLower(opt.Key)}
	default:
		return "<unset:" + opt.Key + ">"
	}
}

// ResolvedConfig is an immutable, typed configuration snapshot. It is safe for
// concurrent use by any number of readers.
type ResolvedConfig struct {
	env          Environment
	registry     *Registry
	values       map[string]any
	sources      map[string]string
	placeholders map[string]bool
	warnings     []string
	report       *ValidationReport
}

// Environment returns the environment the snapshot was resolved for.
func (c *ResolvedConfig) Environment() Environment {
	return c.env
}

// Warnings returns the non-fatal findings of resolution, including violations
// that were downgraded outside production.
func (c *ResolvedConfig) Warnings() []string {
	return slices.Clone(c.warnings)
}

// Report returns the violations that were downgraded to warnings. It is empty
// for a clean resolution.
func (c *ResolvedConfig) Report() *ValidationReport {
	return &ValidationReport{Errors: slices.Clone(c.report.Errors)}
}

// IsSet reports whether key has a value, including a placeholder.
func (c *ResolvedConfig) IsSet(key string) bool {
	c.option(key)
	_, ok := c.values[key]
	return ok
}

// IsPlaceholder reports whether key holds a sentinel instead of a real value.
func (c *ResolvedConfig) IsPlaceholder(key string) bool {
	c.option(key)
	return c.placeholders[key]
}

// Source returns "env", "file", "default" or "placeholder" for a set key and
// "" for an unset one.
func (c *ResolvedConfig) Source(key string) string {
	c.option(key)
	return c.sources[key]
}

// Lookup returns the typed value of key. Slice and URL values are copies.
func (c *ResolvedConfig) Lookup(key string) (any, bool) {
	c.option(key)
	v, ok := c.values[key]
	if !ok {
		return nil, false
	}
	switch t := v.(type) {
	case []string:
		return slices.Clone(t), true
	case url.URL:
		return cloneURL(t), true
	}
	return v, true
}

// String returns a string option, or "" when it is unset.
func (c *ResolvedConfig) String(key string) string {
	v, _ := typed[string](c, key, TypeString)
	return v
}

// Bool returns a boolean option, or false when it is unset.
func (c *ResolvedConfig) Bool(key string) bool {
	v, _ := typed[bool](c, key, TypeBool)
	return v
}

// Int returns an integer option, or 0 when it is unset.
func (c *ResolvedConfig) Int(key string) int {
	v, _ := typed[int](c, key, TypeInt)
	return v
}

// Duration returns a duration option, or 0 when it is unset.
func (c *ResolvedConfig) Duration(key string) time.Duration {
	v, _ := typed[time.Duration](c, key, TypeDuration)
	return v
}

// List returns a copy of a list option, or nil when it is unset.
func (c *ResolvedConfig) List(key string) []string {
	v, _ := typed[[]string](c, key, TypeList)
	return slices.Clone(v)
}

// URL returns a copy of a URL option, or nil when it is unset.
func (c *ResolvedConfig) URL(key string) *url.URL {
	v, ok := typed[url.URL](c, key, TypeURL)
	if !ok {
		return nil
	}
	u := cloneURL(v)
	return &u
}

// option panics on unregistered keys: a misspelled key is a programming error.
func (c *ResolvedConfig) option(key string) Option {
	i, ok := c.registry.index[key]
	if !ok {
		panic(fmt.Sprintf("config: unknown option %q", key))
	}
	return c.registry.options[i]
}

func typed[T any](c *ResolvedConfig, key string, want ValueType) (T, bool) {
	var zero T
	opt := c.option(key)
	if opt.Type != want {
		panic(fmt.Sprintf("config: option %s is %s, not %s", key, opt.Type, want))
	}
	v, ok := c.values[key]
	if !ok {
		return zero, false
	}
	return v.(T), true
}

func cloneURL(u url.URL) url.URL {
	if u.User != nil {
		if p, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), p)
		} else {
			u.User = url.User(u.User.Username())
		}
	}
	return u
}
