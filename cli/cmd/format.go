package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/argot/getopt"
	"github.com/ardnew/argot/pkg"
)

// Output format names accepted by --format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// indent is the indent width of JSON and YAML output.
const indent = 2

// encode writes v to w as JSON or YAML. Text output is command specific and
// is not handled here.
func encode(ctx context.Context, w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", strings.Repeat(" ", indent))

		if err := enc.Encode(v); err != nil {
			return pkg.ErrJSONMarshal.Wrap(err)
		}

	case FormatYAML:
		data, err := yaml.MarshalContext(ctx, v, yaml.Indent(indent))
		if err != nil {
			return pkg.ErrYAMLMarshal.Wrap(err)
		}

		if _, err := w.Write(data); err != nil {
			return ErrWriteOutput.Wrap(err)
		}

	default:
		return pkg.ErrInvalidFormat.Wrapf("%q", format)
	}

	return nil
}

// writeResult writes a parse result as "key=value" lines in key order.
// Sequences are written one "key[i]=value" line per element, flags as
// "key", and absent values as "key=".
func writeResult(w io.Writer, res getopt.Result) error {
	for _, key := range res.Keys() {
		var err error

		switch v := res[key].(type) {
		case bool:
			_, err = fmt.Fprintln(w, key)
		case nil:
			_, err = fmt.Fprintf(w, "%s=\n", key)
		case []any:
			for i, e := range v {
				if e == nil {
					e = ""
				}

				if _, err = fmt.Fprintf(w, "%s[%d]=%v\n", key, i, e); err != nil {
					break
				}
			}
		default:
			_, err = fmt.Fprintf(w, "%s=%v\n", key, v)
		}

		if err != nil {
			return ErrWriteOutput.With(slog.String("key", key)).Wrap(err)
		}
	}

	return nil
}

// writeLines writes each element of argv on its own line.
func writeLines(w io.Writer, argv []string) error {
	for _, arg := range argv {
		if _, err := fmt.Fprintln(w, arg); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
