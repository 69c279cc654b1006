// Package manifest loads the YAML command metadata that supplies descriptor
// strings to the dispatcher.
//
// A manifest names a set of commands. Each command declares the option
// descriptors its arguments are parsed against and the parameter
// descriptors that turn the parse result into the command's argv:
//
//	name: app
//	checkers:
//	  port: value matches "^[0-9]+$"
//	commands:
//	  serve:
//	    description: Run the server
//	    options: ["p|port{0,1}:port Listen port"]
//	    args: ["$port?\"8080\""]
//
// Unrecognized keys and values of the wrong type are dropped with a warning
// rather than failing the load.
package manifest

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/argot/pkg"
)

// Command is the metadata of one dispatchable command.
type Command struct {
	Name        string   `json:"name"                  yaml:"-"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Help        string   `json:"help,omitempty"        yaml:"help,omitempty"`
	Options     []string `json:"options,omitempty"     yaml:"options,omitempty"`
	Args        []string `json:"args,omitempty"        yaml:"args,omitempty"`
	Hidden      bool     `json:"hidden,omitempty"      yaml:"hidden,omitempty"`
	// HasArgs records whether args was declared at all. A command without
	// args receives its raw arguments unchanged.
	HasArgs bool `json:"-" yaml:"-"`
}

// IsHidden reports whether the command is left out of listings: its name
// starts with "." or it is marked hidden.
func (c *Command) IsHidden() bool {
	return c.Hidden || strings.HasPrefix(c.Name, ".")
}

// Manifest is a parsed manifest file.
type Manifest struct {
	Name        string              `json:"name,omitempty"        yaml:"name,omitempty"`
	Version     string              `json:"version,omitempty"     yaml:"version,omitempty"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	Checkers    map[string]string   `json:"checkers,omitempty"    yaml:"checkers,omitempty"`
	Commands    map[string]*Command `json:"commands,omitempty"    yaml:"commands,omitempty"`

	// Path is the file the manifest was loaded from, if any.
	Path string `json:"-" yaml:"-"`
	// Warnings lists problems that were tolerated while loading.
	Warnings []string `json:"-" yaml:"-"`
}

// Load reads a manifest from r.
func Load(ctx context.Context, r io.Reader) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, pkg.ErrReadInput.Wrap(err)
	}

	return Parse(ctx, data)
}

// LoadFile reads the manifest at path.
func LoadFile(ctx context.Context, path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkg.ErrReadInput.Wrap(err)
	}

	m, err := Parse(ctx, data)
	if err != nil {
		return nil, err
	}

	m.Path = path

	return m, nil
}

// Parse decodes manifest YAML.
func Parse(ctx context.Context, data []byte) (*Manifest, error) {
	var raw map[string]any

	if err := yaml.UnmarshalContext(ctx, data, &raw); err != nil {
		return nil, pkg.ErrInvalidManifest.Wrap(err)
	}

	m := &Manifest{Commands: make(map[string]*Command)}

	for _, key := range slices.Sorted(maps.Keys(raw)) {
		val := raw[key]

		switch key {
		case "name":
			m.Name = m.str(key, val)
		case "version":
			m.Version = m.str(key, val)
		case "description":
			m.Description = m.str(key, val)
		case "checkers":
			m.Checkers = m.checkers(val)
		case "commands":
			m.commands(val)
		default:
			m.warn("unknown key %q", key)
		}
	}

	return m, nil
}

// Marshal encodes m as YAML.
func (m *Manifest) Marshal(ctx context.Context) ([]byte, error) {
	data, err := yaml.MarshalContext(ctx, m, yaml.Indent(2))
	if err != nil {
		return nil, pkg.ErrYAMLMarshal.Wrap(err)
	}

	return data, nil
}

// Command returns the named command.
func (m *Manifest) Command(name string) (*Command, bool) {
	c, ok := m.Commands[name]

	return c, ok
}

// Names returns the command names in sorted order, leaving out hidden
// commands unless all is set.
func (m *Manifest) Names(all bool) []string {
	names := make([]string, 0, len(m.Commands))

	for _, name := range slices.Sorted(maps.Keys(m.Commands)) {
		if all || !m.Commands[name].IsHidden() {
			names = append(names, name)
		}
	}

	return names
}

func (m *Manifest) warn(format string, args ...any) {
	m.Warnings = append(m.Warnings, fmt.Sprintf(format, args...))
}

// str accepts strings and scalars that print as one.
func (m *Manifest) str(key string, val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(v)
	default:
		m.warn("%s: expected a string, got %T", key, val)

		return ""
	}
}

func (m *Manifest) strs(key string, val any) ([]string, bool) {
	list, ok := val.([]any)
	if !ok {
		if val != nil {
			m.warn("%s: expected a list of strings, got %T", key, val)
		}

		return nil, val == nil
	}

	out := make([]string, 0, len(list))

	for i, e := range list {
		s, ok := e.(string)
		if !ok {
			m.warn("%s[%d]: expected a string, got %T", key, i, e)

			continue
		}

		out = append(out, s)
	}

	return out, true
}

func (m *Manifest) checkers(val any) map[string]string {
	defs, ok := val.(map[string]any)
	if !ok {
		if val != nil {
			m.warn("checkers: expected a mapping, got %T", val)
		}

		return nil
	}

	out := make(map[string]string, len(defs))

	for _, name := range slices.Sorted(maps.Keys(defs)) {
		if src := m.str("checkers."+name, defs[name]); src != "" {
			out[name] = src
		}
	}

	return out
}

func (m *Manifest) commands(val any) {
	cmds, ok := val.(map[string]any)
	if !ok {
		if val != nil {
			m.warn("commands: expected a mapping, got %T", val)
		}

		return
	}

	for _, name := range slices.Sorted(maps.Keys(cmds)) {
		m.Commands[name] = m.command(name, cmds[name])
	}
}

func (m *Manifest) command(name string, val any) *Command {
	c := &Command{Name: name}
	prefix := "commands." + name

	fields, ok := val.(map[string]any)
	if !ok {
		if val != nil {
			m.warn("%s: expected a mapping, got %T", prefix, val)
		}

		return c
	}

	for _, key := range slices.Sorted(maps.Keys(fields)) {
		v := fields[key]
		path := prefix + "." + key

		switch key {
		case "description":
			c.Description = m.str(path, v)
		case "help":
			c.Help = m.str(path, v)
		case "hidden":
			hidden, ok := v.(bool)
			if !ok && v != nil {
				m.warn("%s: expected a boolean, got %T", path, v)
			}

			c.Hidden = hidden
		case "options":
			c.Options, _ = m.strs(path, v)
		case "args":
			if v != nil {
				c.Args, c.HasArgs = m.strs(path, v)
			}
		default:
			m.warn("%s: unknown key %q", prefix, key)
		}
	}

	return c
}
