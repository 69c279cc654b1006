package getopt

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type shape struct {
	Name        string
	Checker     string
	Description string
	Short       []string
	Long        []string
	Rules       []Rule
	Choices     []Choice
	Min         int
	Max         int
	Arg         ArgType
}

func shapeOf(o *Option) shape {
	hi, _ := o.Max()

	return shape{
		Name:        o.Name(),
		Checker:     o.Checker(),
		Description: o.Description(),
		Short:       o.Short(),
		Long:        o.Long(),
		Rules:       o.Rules(),
		Choices:     o.Choices(),
		Min:         o.Min(),
		Max:         hi,
		Arg:         o.ArgType(),
	}
}

var valueToAliases = []Rule{{Type: RuleValue, To: []Dest{{Kind: DestLong}, {Kind: DestShort}}}}

func TestCompile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		descriptor string
		want       shape
	}{
		{
			name:       "flag",
			descriptor: "v|verbose Be loud",
			want: shape{
				Short: []string{"v"}, Long: []string{"verbose"},
				Arg: ArgNone, Min: 0, Max: 1,
				Description: "Be loud",
				Rules:       valueToAliases,
			},
		},
		{
			name:       "aliases_sorted_and_deduplicated",
			descriptor: "verbose|v|loud|v",
			want: shape{
				Short: []string{"v"}, Long: []string{"loud", "verbose"},
				Arg: ArgNone, Min: 0, Max: 1,
				Rules: valueToAliases,
			},
		},
		{
			name:       "array",
			descriptor: "p|package* Packages to install",
			want: shape{
				Short: []string{"p"}, Long: []string{"package"},
				Arg: ArgArray, Min: 0, Max: Unbounded,
				Description: "Packages to install",
				Rules:       valueToAliases,
			},
		},
		{
			name:       "optional",
			descriptor: "l|level?",
			want: shape{
				Short: []string{"l"}, Long: []string{"level"},
				Arg: ArgOptional, Min: 0, Max: 1,
				Rules: valueToAliases,
			},
		},
		{
			name:       "single_bound_is_required",
			descriptor: "name{1}",
			want: shape{
				Long: []string{"name"},
				Arg:  ArgRequired, Min: 1, Max: 1,
				Rules: valueToAliases,
			},
		},
		{
			name:       "bounds_up_to_one_is_required",
			descriptor: "o|output{0,1}:path Output file",
			want: shape{
				Short: []string{"o"}, Long: []string{"output"},
				Arg: ArgRequired, Min: 0, Max: 1,
				Checker:     "path",
				Description: "Output file",
				Rules:       valueToAliases,
			},
		},
		{
			name:       "bounds_above_one_are_array",
			descriptor: "n{2,3}",
			want: shape{
				Short: []string{"n"},
				Arg:   ArgArray, Min: 2, Max: 3,
				Rules: valueToAliases,
			},
		},
		{
			name:       "open_bounds_are_array",
			descriptor: "n{2,}",
			want: shape{
				Short: []string{"n"},
				Arg:   ArgArray, Min: 2, Max: Unbounded,
				Rules: valueToAliases,
			},
		},
		{
			name:       "positional",
			descriptor: "$command Command to run",
			want: shape{
				Name: "command",
				Arg:  ArgNone, Min: 0, Max: 1,
				Description: "Command to run",
				Rules:       []Rule{{Type: RuleValue, To: []Dest{Key("command")}}},
			},
		},
		{
			name:       "positional_array",
			descriptor: "$files+",
			want: shape{
				Name: "files",
				Arg:  ArgArray, Min: 1, Max: Unbounded,
				Rules: []Rule{{Type: RuleValue, To: []Dest{Key("files")}}},
			},
		},
		{
			name:       "literal_destination",
			descriptor: "h|help[__help__] Show help",
			want: shape{
				Short: []string{"h"}, Long: []string{"help"},
				Arg: ArgNone, Min: 0, Max: 1,
				Description: "Show help",
				Rules:       []Rule{{Type: RuleValue, To: []Dest{Key("__help__")}}},
			},
		},
		{
			name:       "rule_sources",
			descriptor: `x[a,@@=@][b=$a][c="x y"][d='raw\'][e=word][f=$]`,
			want: shape{
				Short: []string{"x"},
				Arg:   ArgNone, Min: 0, Max: 1,
				Rules: []Rule{
					{Type: RuleShort, To: []Dest{Key("a"), {Kind: DestLong}}},
					{Type: RuleVar, From: "a", To: []Dest{Key("b")}},
					{Type: RuleConst, From: "x y", To: []Dest{Key("c")}},
					{Type: RuleConst, From: `raw\`, To: []Dest{Key("d")}},
					{Type: RuleConst, From: "word", To: []Dest{Key("e")}},
					{Type: RuleValue, To: []Dest{Key("f")}},
				},
			},
		},
		{
			name:       "fallback_placeholders",
			descriptor: "@|@@*",
			want: shape{
				Short: []string{"@"}, Long: []string{"@@"},
				Arg: ArgArray, Min: 0, Max: Unbounded,
				Rules: valueToAliases,
			},
		},
		{
			name:       "choice_group",
			descriptor: "a|b|c[mode=@@@] Pick one [a] alpha [b|c] beta",
			want: shape{
				Short: []string{"a", "b", "c"},
				Arg:   ArgNone, Min: 0, Max: 1,
				Description: "Pick one\nalpha\nbeta",
				Rules:       []Rule{{Type: RuleAll, To: []Dest{Key("mode")}}},
				Choices: []Choice{
					{Aliases: []string{"a"}, Description: "alpha"},
					{Aliases: []string{"b", "c"}, Description: "beta"},
				},
			},
		},
		{
			name:       "unrelated_brackets_stay_in_text",
			descriptor: "f|force Overwrite [dangerous]",
			want: shape{
				Short: []string{"f"}, Long: []string{"force"},
				Arg: ArgNone, Min: 0, Max: 1,
				Description: "Overwrite [dangerous]",
				Rules:       valueToAliases,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opt, err := Compile(tt.descriptor)
			if err != nil {
				t.Fatalf("Compile(%q) error = %v", tt.descriptor, err)
			}

			if opt.ID() != 0 {
				t.Errorf("ID() = %d, want 0", opt.ID())
			}

			if opt.Descriptor() != tt.descriptor {
				t.Errorf("Descriptor() = %q, want %q", opt.Descriptor(), tt.descriptor)
			}

			if diff := cmp.Diff(tt.want, shapeOf(opt), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Compile(%q) mismatch (-want +got):\n%s", tt.descriptor, diff)
			}
		})
	}
}

func TestCompileInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		descriptor string
	}{
		{name: "empty", descriptor: ""},
		{name: "blank", descriptor: "   "},
		{name: "zero_bound", descriptor: "x{0}"},
		{name: "inverted_bounds", descriptor: "x{3,2}"},
		{name: "unclosed_bounds", descriptor: "x{1"},
		{name: "triple_placeholder_alias", descriptor: "@@@"},
		{name: "empty_alias", descriptor: "a||b"},
		{name: "unclosed_rule", descriptor: "x["},
		{name: "bad_destination", descriptor: "x[@@@@]"},
		{name: "unterminated_string", descriptor: `x[a="open]`},
		{name: "missing_positional_name", descriptor: "$"},
		{name: "missing_checker", descriptor: "x: text"},
		{name: "trailing_garbage", descriptor: "x!"},
		{name: "uncovered_choice", descriptor: "a|b Pick [a] only a"},
		{name: "duplicate_choice", descriptor: "a|b Pick [a] one [a|b] two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opt, err := Compile(tt.descriptor)
			if err == nil {
				t.Fatalf("Compile(%q) = %v, want error", tt.descriptor, opt)
			}

			if !errors.Is(err, ErrDescriptor) {
				t.Errorf("Compile(%q) error = %v, want ErrDescriptor", tt.descriptor, err)
			}
		})
	}
}

func TestCompileCached(t *testing.T) {
	t.Parallel()

	const descriptor = "c|cache-test{1,4}:int Cached"

	var (
		wg   sync.WaitGroup
		opts [8]*Option
		errs [8]error
	)

	for i := range opts {
		wg.Add(1)

		go func() {
			defer wg.Done()

			opts[i], errs[i] = Compile(descriptor)
		}()
	}

	wg.Wait()

	for i := range opts {
		if errs[i] != nil {
			t.Fatalf("Compile error = %v", errs[i])
		}

		if diff := cmp.Diff(shapeOf(opts[0]), shapeOf(opts[i]), cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("Compile shape %d mismatch (-want +got):\n%s", i, diff)
		}
	}

	if opts[0] == opts[1] {
		t.Error("Compile returned a shared option")
	}
}

func TestMustCompilePanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("MustCompile did not panic")
		}
	}()

	MustCompile("x{0}")
}

func TestFlag(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"v":       "-v",
		"verbose": "--verbose",
		"é":       "-é",
		"@":       "<default-short>",
		"@@":      "<default-long>",
	}

	for alias, want := range tests {
		if got := Flag(alias); got != want {
			t.Errorf("Flag(%q) = %q, want %q", alias, got, want)
		}
	}
}
