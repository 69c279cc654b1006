package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/argot/getopt"
	"github.com/ardnew/argot/pkg"
)

const sampleManifest = `
name: app
description: Sample console
commands:
  build:
    description: Build packages
    options:
      - p|package* Package to build
      - j|jobs{0,1} Parallel jobs
      - V|verbose Verbose output
    args: ["@package", "$jobs?\"1\"", "#verbose"]
  clean:
    description: Remove build output
`

// writeFile writes content to name under a temporary directory and returns
// its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

// capture returns a context whose command output is written to the returned
// buffer.
func capture(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer

	return WithOutput(t.Context(), &buf), &buf
}

func TestParseRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cmd  Parse
		want string
	}{
		{
			name: "values",
			cmd: Parse{
				Options: Options{Option: []string{"v|verbose", "o|output{0,1}", "$files*"}},
				Format:  FormatText,
				Args:    []string{"-v", "-o", "out", "a", "b"},
			},
			want: "files[0]=a\nfiles[1]=b\no=out\noutput=out\nv\nverbose\n",
		},
		{
			name: "counts",
			cmd: Parse{
				Options: Options{Option: []string{"v|verbose", "q"}},
				Counts:  true,
				Format:  FormatText,
				Args:    []string{"--verbose"},
			},
			want: "v\nverbose\n#-v, --verbose=1\n",
		},
		{
			name: "lenient_rest",
			cmd: Parse{
				Options: Options{Option: []string{"v"}, Lenient: true},
				Format:  FormatText,
				Args:    []string{"-v", "--x", "y"},
			},
			want: "v\n--\n--x\ny\n",
		},
		{
			name: "empty",
			cmd: Parse{
				Options: Options{Option: []string{"v"}},
				Format:  FormatText,
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, out := capture(t)

			if err := tt.cmd.Run(ctx); err != nil {
				t.Fatalf("Run error = %v", err)
			}

			if diff := cmp.Diff(tt.want, out.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseRunJSON(t *testing.T) {
	t.Parallel()

	ctx, out := capture(t)

	p := Parse{
		Options: Options{Option: []string{"v|verbose", "$file"}},
		Format:  FormatJSON,
		Args:    []string{"x", "-v"},
	}

	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}

	want := map[string]any{
		"values": map[string]any{"v": true, "verbose": true, "file": "x"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRunErrors(t *testing.T) {
	t.Parallel()

	manifestPath := writeFile(t, "argot.yaml", sampleManifest)

	tests := []struct {
		name string
		cmd  Parse
		want error
	}{
		{
			name: "no_options",
			cmd:  Parse{Format: FormatText},
			want: ErrNoOptions,
		},
		{
			name: "manifest_without_command",
			cmd:  Parse{Options: Options{Manifest: manifestPath}, Format: FormatText},
			want: ErrNoCommand,
		},
		{
			name: "unknown_command",
			cmd: Parse{
				Options: Options{Manifest: manifestPath, Command: "deploy"},
				Format:  FormatText,
			},
			want: ErrNoSuchCmd,
		},
		{
			name: "invalid_descriptor",
			cmd:  Parse{Options: Options{Option: []string{"x{0}"}}, Format: FormatText},
			want: getopt.ErrDescriptor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, _ := capture(t)

			if err := tt.cmd.Run(ctx); !errors.Is(err, tt.want) {
				t.Errorf("Run error = %v, want %v", err, tt.want)
			}
		})
	}

	ctx, _ := capture(t)

	p := Parse{Options: Options{Option: []string{"v"}}, Format: FormatText, Args: []string{"--nope"}}

	var argsErr *getopt.ArgsError
	if err := p.Run(ctx); !errors.As(err, &argsErr) {
		t.Errorf("Run(--nope) error = %v, want *getopt.ArgsError", err)
	}
}

func TestParseRunManifest(t *testing.T) {
	t.Parallel()

	ctx, out := capture(t)

	p := Parse{
		Options: Options{
			Manifest: writeFile(t, "argot.yaml", sampleManifest),
			Command:  "build",
		},
		Format: FormatText,
		Args:   []string{"-p", "core", "-j", "4"},
	}

	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run error = %v", err)
	}

	want := "j=4\njobs=4\np[0]=core\npackage[0]=core\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestInspectRun(t *testing.T) {
	t.Parallel()

	ctx, out := capture(t)

	i := Inspect{
		Options: Options{Option: []string{"v|verbose Be loud", "o|output{0,1}", "$file"}},
		Format:  FormatJSON,
	}

	if err := i.Run(ctx); err != nil {
		t.Fatalf("Run error = %v", err)
	}

	var infos []optionInfo
	if err := json.Unmarshal(out.Bytes(), &infos); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}

	type summary struct{ Option, Description string }

	got := make([]summary, len(infos))
	for n, info := range infos {
		got[n] = summary{info.Option, info.Description}
	}

	want := []summary{
		{"-v, --verbose", "Be loud"},
		{"-o, --output", ""},
		{"<file>", ""},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}

	ctx, out = capture(t)
	i.Format = FormatText

	if err := i.Run(ctx); err != nil {
		t.Fatalf("Run(text) error = %v", err)
	}

	for _, s := range []string{"OPTION", "-v, --verbose", "<file>", "Be loud"} {
		if !strings.Contains(out.String(), s) {
			t.Errorf("table does not contain %q:\n%s", s, out)
		}
	}
}

func TestInspectRunCommands(t *testing.T) {
	t.Parallel()

	ctx, out := capture(t)

	i := Inspect{
		Options: Options{Manifest: writeFile(t, "argot.yaml", sampleManifest)},
		Format:  FormatJSON,
	}

	if err := i.Run(ctx); err != nil {
		t.Fatalf("Run error = %v", err)
	}

	var got []commandInfo
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}

	want := []commandInfo{
		{Name: "build", Description: "Build packages", Options: 3, Args: 3},
		{Name: "clean", Description: "Remove build output"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertRun(t *testing.T) {
	t.Parallel()

	result := writeFile(t, "result.yaml", "output: first\nfiles: [a, b]\nverbose: true\n")

	ctx, out := capture(t)
	ctx = WithStdin(ctx, strings.NewReader(`{"output": "second"}`))

	c := Convert{
		Param:  []string{"?output", "@files", "#verbose", "?missing", "@"},
		Input:  []string{"-", result, result},
		Format: FormatText,
		Args:   []string{"x", "y"},
	}

	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run error = %v", err)
	}

	if diff := cmp.Diff("second\na\nb\n1\nx\ny\n", out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertRunErrors(t *testing.T) {
	t.Parallel()

	bad := writeFile(t, "bad.yaml", "- not\n- a map\n")

	tests := []struct {
		name string
		cmd  Convert
		want error
	}{
		{
			name: "missing_input",
			cmd:  Convert{Param: []string{"@x"}, Input: []string{filepath.Join(t.TempDir(), "none")}},
			want: pkg.ErrReadInput,
		},
		{
			name: "not_a_map",
			cmd:  Convert{Param: []string{"@x"}, Input: []string{bad}},
			want: ErrDecodeResult,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, _ := capture(t)

			tt.cmd.Format = FormatText
			if err := tt.cmd.Run(ctx); !errors.Is(err, tt.want) {
				t.Errorf("Run error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPlanRun(t *testing.T) {
	t.Parallel()

	manifestPath := writeFile(t, "argot.yaml", sampleManifest)

	tests := []struct {
		name     string
		args     []string
		contains []string
		want     string
	}{
		{
			name: "invoke",
			args: []string{"build", "-p", "core", "-V"},
			want: "build\ncore\n1\n1\n",
		},
		{
			name: "version",
			args: []string{"--version"},
			want: "app\n",
		},
		{
			name:     "usage",
			contains: []string{"Sample console", "build", "Build packages", "clean"},
		},
		{
			name:     "command_help",
			args:     []string{"build", "--help"},
			contains: []string{"build", "-p, --package", "Package to build", "-V, --verbose"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, out := capture(t)

			p := Plan{Manifest: manifestPath, Format: FormatText, Args: tt.args}
			if err := p.Run(ctx); err != nil {
				t.Fatalf("Run error = %v", err)
			}

			if tt.want != "" {
				if diff := cmp.Diff(tt.want, out.String()); diff != "" {
					t.Errorf("output mismatch (-want +got):\n%s", diff)
				}
			}

			for _, s := range tt.contains {
				if !strings.Contains(out.String(), s) {
					t.Errorf("output does not contain %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestVersionRun(t *testing.T) {
	t.Parallel()

	ctx, out := capture(t)

	if err := (Version{}).Run(ctx); err != nil {
		t.Fatalf("Run error = %v", err)
	}

	if want := pkg.Name + " " + pkg.Version + "\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestOpenInputs(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "input.yaml", "a: 1\n")

	link := filepath.Join(t.TempDir(), "link.yaml")
	if err := os.Symlink(path, link); err != nil {
		t.Fatal(err)
	}

	ctx := WithStdin(t.Context(), strings.NewReader("stdin"))

	inputs, err := openInputs(ctx, []string{"-", path, link, "-"})
	if err != nil {
		t.Fatalf("openInputs error = %v", err)
	}

	defer closeInputs(inputs)

	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = in.name
	}

	if diff := cmp.Diff([]string{path, "-"}, names); diff != "" {
		t.Errorf("inputs mismatch (-want +got):\n%s", diff)
	}

	data, err := io.ReadAll(inputs[len(inputs)-1])
	if err != nil || string(data) != "stdin" {
		t.Errorf("stdin input = %q, %v", data, err)
	}

	if _, err := openInputs(ctx, []string{path, filepath.Join(t.TempDir(), "none")}); !errors.Is(err, pkg.ErrReadInput) {
		t.Errorf("openInputs(missing) error = %v, want ErrReadInput", err)
	}
}

func TestValidateRun(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "argot.yaml", sampleManifest)
		ctx, out := capture(t)

		if err := (&Validate{Manifest: path}).Run(ctx); err != nil {
			t.Fatalf("Run error = %v", err)
		}

		if diff := cmp.Diff(path+": ok\n", out.String()); diff != "" {
			t.Errorf("output mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "argot.yaml", `
commands:
  broken:
    options: ["n{0,1}:nosuch", "v|verbose", "v|version"]
  fine:
    options: ["q|quiet"]
`)
		ctx, out := capture(t)

		err := (&Validate{Manifest: path}).Run(ctx)
		if !errors.Is(err, ErrInvalid) {
			t.Fatalf("Run error = %v, want ErrInvalid", err)
		}

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		if len(lines) != 2 {
			t.Fatalf("output has %d lines, want 2:\n%s", len(lines), out)
		}

		for _, line := range lines {
			if !strings.HasPrefix(line, path+`: command "broken"`) {
				t.Errorf("line %q does not name the broken command", line)
			}
		}

		// Commands load despite problems elsewhere in the manifest.
		ctx, out = capture(t)

		p := Plan{Manifest: path, Format: FormatText, Args: []string{"fine", "-q"}}
		if err := p.Run(ctx); err != nil {
			t.Fatalf("Plan.Run error = %v", err)
		}

		if diff := cmp.Diff("fine\n-q\n", out.String()); diff != "" {
			t.Errorf("plan output mismatch (-want +got):\n%s", diff)
		}
	})
}
