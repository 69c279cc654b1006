package param

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/argot/getopt"
)

func TestArgs(t *testing.T) {
	t.Parallel()

	result := getopt.Result{
		"tag":     []any{"a", "b"},
		"name":    "x",
		"flag":    true,
		"off":     false,
		"absent":  nil,
		"empty":   []any{},
		"mixed":   []any{true, nil, "z"},
		"blank":   "",
		"package": []any{"core"},
	}
	rest := []string{"r1", "r2"}

	tests := []struct {
		descriptor string
		want       []string
	}{
		{"@tag", []string{"a", "b"}},
		{"$tag", []string{"a"}},
		{"?tag", []string{"a"}},
		{"#tag", []string{"2"}},
		{"@name", []string{"x"}},
		{"#name", []string{"1"}},
		{"$flag", []string{"1"}},
		{"@off", []string{"0"}},
		{"@mixed", []string{"1", "", "z"}},
		{"$blank", []string{""}},
		{"@missing", []string{}},
		{"$missing", []string{""}},
		{"?missing", []string{}},
		{"#missing", []string{"0"}},
		{"#absent", []string{"0"}},
		{"$absent", []string{""}},
		{`$missing?"dflt"`, []string{"dflt"}},
		{`?missing?"dflt"`, []string{"dflt"}},
		{`@empty?"dflt"`, []string{"dflt"}},
		{`$name?"dflt"`, []string{"x"}},
		{`#missing?"dflt"`, []string{"0"}},
		{`$missing?""`, []string{""}},
		{"@", []string{"r1", "r2"}},
		{"$", []string{"r1"}},
		{"#", []string{"2"}},
		{"@package", []string{"core"}},
	}

	for _, tt := range tests {
		t.Run(tt.descriptor, func(t *testing.T) {
			t.Parallel()

			p, err := Compile(tt.descriptor)
			if err != nil {
				t.Fatalf("Compile(%q) error = %v", tt.descriptor, err)
			}

			if diff := cmp.Diff(tt.want, p.Args(result, rest)); diff != "" {
				t.Errorf("Args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompile(t *testing.T) {
	t.Parallel()

	p, err := Compile(`$jobs?"1"`)
	if err != nil {
		t.Fatal(err)
	}

	if p.Kind() != KindScalar || p.Identifier() != "jobs" || p.String() != `$jobs?"1"` {
		t.Errorf("Compile = %v %q %q", p.Kind(), p.Identifier(), p.String())
	}

	if d, ok := p.Default(); !ok || d != "1" {
		t.Errorf("Default() = %q, %v", d, ok)
	}

	p, err = Compile(`?msg?"tab\there"`)
	if err != nil {
		t.Fatal(err)
	}

	if d, _ := p.Default(); d != "tab\there" {
		t.Errorf("Default() = %q, want JSON-decoded escape", d)
	}
}

func TestCompileInvalid(t *testing.T) {
	t.Parallel()

	for _, d := range []string{
		"",
		"x",
		"name",
		"$bad!",
		"$a?notjson",
		"$a?1",
		`$a?["x"]`,
		`$?"x"`,
		"@a b",
	} {
		if _, err := Compile(d); !errors.Is(err, ErrDescriptor) {
			t.Errorf("Compile(%q) error = %v, want ErrDescriptor", d, err)
		}
	}
}

func TestConvert(t *testing.T) {
	t.Parallel()

	c, err := NewConverter("@package", `$jobs?"1"`, "#verbose", "?output", "@")
	if err != nil {
		t.Fatal(err)
	}

	if len(c.Params()) != 5 {
		t.Errorf("len(Params()) = %d", len(c.Params()))
	}

	got := c.Convert(getopt.Result{
		"package": []any{"core", "extra"},
		"verbose": true,
	}, []string{"--", "x"})

	want := []string{"core", "extra", "1", "1", "--", "x"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Convert mismatch (-want +got):\n%s", diff)
	}

	empty, err := NewConverter()
	if err != nil {
		t.Fatal(err)
	}

	if got := empty.Convert(nil, nil); got == nil || len(got) != 0 {
		t.Errorf("empty Convert = %#v, want empty non-nil", got)
	}

	if _, err := NewConverter("@ok", "bad"); !errors.Is(err, ErrDescriptor) {
		t.Errorf("NewConverter error = %v, want ErrDescriptor", err)
	}
}

func TestEndToEnd(t *testing.T) {
	t.Parallel()

	r := getopt.NewRegistry().MustRegister(true, "p|package*", "v|verbose", "$files*")

	b, err := r.Bind([]string{"--package", "core", "-p", "extra", "-v", "main.go"})
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]any{"core", "extra"}, b.Values["package"]); diff != "" {
		t.Errorf("package mismatch (-want +got):\n%s", diff)
	}

	c, err := NewConverter("@package", "$verbose", "@files")
	if err != nil {
		t.Fatal(err)
	}

	got := c.Convert(b.Values, b.Rest)
	if diff := cmp.Diff([]string{"core", "extra", "1", "main.go"}, got); diff != "" {
		t.Errorf("Convert mismatch (-want +got):\n%s", diff)
	}
}
