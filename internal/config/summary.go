package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/phrazzld/confengine/internal/redact"
)

// Summary renders the snapshot as aligned "KEY = value (source)" lines
// followed by any warnings. Secrets are masked and URL passwords redacted.
func (c *ResolvedConfig) Summary() string {
	width := 0
	for _, opt := range c.registry.options {
		width = max(width, len(opt.Key))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "environment: %s\n", c.env)
	for _, opt := range c.registry.options {
		v, ok := c.values[opt.Key]
		if !ok {
			fmt.Fprintf(&sb, "%-*s = <not set>\n", width, opt.Key)
			continue
		}
		fmt.Fprintf(&sb, "%-*s = %s (%s)\n", width, opt.Key, c.display(opt, v), c.sources[opt.Key])
	}

	if len(c.warnings) > 0 {
		fmt.Fprintf(&sb, "warnings (%d):\n", len(c.warnings))
		for _, w := range c.warnings {
			fmt.Fprintf(&sb, "  - %s\n", w)
		}
	}
	return sb.String()
}

func (c *ResolvedConfig) display(opt Option, v any) string {
	if c.placeholders[opt.Key] {
		return "<placeholder>"
	}
	if opt.Secret {
		return redact.Secret(Format(v, opt.Type))
	}
	if u, ok := v.(url.URL); ok {
		return redact.URL(u)
	}
	if s := Format(v, opt.Type); s != "" {
		return s
	}
	return `""`
}
