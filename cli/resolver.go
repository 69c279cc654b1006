package cli

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve returns a [kong.ConfigurationLoader] that reads YAML config files.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx), "/path/to/config.yaml")
//
// The file is a mapping of flag names to values. Flag names may use hyphens
// or underscores. A nested mapping named after a command holds values that
// apply only while that command runs, and takes precedence:
//
//	log-level: debug
//	log_pretty: false
//	parse:
//	  format: json
//
// Command-line flags override config file values. A file that is not a
// mapping configures nothing.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		var values map[string]any

		if err := yaml.UnmarshalContext(ctx, data, &values); err != nil {
			return config{}, nil //nolint:nilerr
		}

		return config(values), nil
	}
}

// config implements [kong.Resolver] for YAML configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	parent *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if parent != nil && parent.Command != nil {
		if scope, ok := r[parent.Command.Name].(map[string]any); ok {
			if value, ok := config(scope).lookup(flag.Name); ok {
				return value, nil
			}
		}
	}

	if value, ok := r.lookup(flag.Name); ok {
		return value, nil
	}

	return nil, nil //nolint:nilnil
}

// lookup finds name in hyphenated or underscored form.
func (r config) lookup(name string) (any, bool) {
	for _, key := range []string{name, strings.ReplaceAll(name, "-", "_")} {
		if value, ok := r[key]; ok {
			return scalar(value), true
		}
	}

	return nil, false
}

// scalar converts YAML numbers to strings, which is the form kong expects
// for numeric flags. Sequences are converted element-wise.
func scalar(v any) any {
	switch n := v.(type) {
	case uint64:
		return strconv.FormatUint(n, 10)
	case int64:
		return strconv.FormatInt(n, 10)
	case int:
		return strconv.Itoa(n)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case []any:
		out := make([]any, len(n))
		for i, e := range n {
			out[i] = scalar(e)
		}

		return out
	default:
		return v
	}
}
