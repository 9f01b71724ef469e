package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/phrazzld/confengine/internal/redact"
)

// Validate checks one option's resolved value in env. present is false when
// neither an override nor a default supplied a value.
func Validate(opt Option, value any, present bool, env Environment) []ValidationError {
	if !present {
		if opt.Required(env) {
			return []ValidationError{{
				Key:     opt.Key,
				Reason:  ReasonMissingRequired,
				Message: fmt.Sprintf("required in %s but not set", env),
			}}
		}
		return nil
	}

	if opt.Validator != nil && !opt.Validator.Accepts(value, env) {
		return []ValidationError{{
			Key:     opt.Key,
			Reason:  ReasonValidatorRejects,
			Message: opt.Validator.Message,
		}}
	}
	return nil
}

// Resolution is the outcome of ValidateAll.
type Resolution struct {
	// Values holds the typed value of every option that has one.
	Values map[string]any

	// Report is complete, possibly empty.
	Report *ValidationReport

	// Warnings are non-fatal findings: advisory rejections and unknown keys.
	Warnings []string
}

// ValidateAll resolves and validates every option in reg against raw for env.
// Coverage is driven by the registry: an option missing from raw is still
// defaulted and checked.
func ValidateAll(reg *Registry, raw RawSettings, env Environment) *Resolution {
	res := &Resolution{Values: make(map[string]any, reg.Len())}
	var errs []ValidationError

	for _, opt := range reg.options {
		text, present := effectiveValue(opt, raw, env)

		var value any
		if present {
			v, err := Coerce(text, opt.Type)
			if err != nil {
				errs = append(errs, ValidationError{
					Key:     opt.Key,
					Reason:  ReasonTypeCoercion,
					Message: coercionMessage(opt, err),
				})
				continue
			}
			value = v
		}

		verrs := Validate(opt, value, present, env)
		errs = append(errs, verrs...)
		if !present || len(verrs) > 0 {
			continue
		}

		res.Values[opt.Key] = value
		if opt.Advisory != nil && !opt.Advisory.Accepts(value, env) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s %s", opt.Key, opt.Advisory.Message))
		}
	}

	for key := range raw {
		if _, known := reg.index[key]; !known && !isBootstrapKey(key) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("unknown configuration key %s ignored", key))
		}
	}
	sort.Strings(res.Warnings)

	res.Report = newReport(errs)
	return res
}

// effectiveValue picks the override if one was supplied, else the default for
// env. Blank overrides count as not supplied.
func effectiveValue(opt Option, raw RawSettings, env Environment) (string, bool) {
	if v, ok := raw[opt.Key]; ok && strings.TrimSpace(v) != "" {
		return v, true
	}
	return opt.Default(env)
}

func coercionMessage(opt Option, err error) string {
	var ce *CoercionError
	if !errors.As(err, &ce) {
		return err.Error()
	}
	if opt.Secret {
		return fmt.Sprintf("cannot convert value to %s: %v", ce.Type, ce.Err)
	}
	return redact.String(fmt.Sprintf("cannot convert %q to %s: %v", ce.Value, ce.Type, ce.Err))
}
