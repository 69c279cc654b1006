package repl

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWordBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "--foo", 5, "--foo", 0, 5},
		{"second_word", "-v --out", 8, "--out", 3, 8},
		{"mid_word", "-v --output x", 6, "--output", 3, 11},
		{"at_start", "--foo", 0, "--foo", 0, 5},
		{"on_space", "-v  x", 3, "", 3, 3},
		{"trailing_space", "-v ", 3, "", 3, 3},
		{"attached_value", "--out=a", 7, "--out=a", 0, 7},
		{"cursor_clamped", "-v", 9, "-v", 0, 2},
		{"empty", "", 0, "", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestCandidates(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, "v|verbose", "o|output{0,1}")
	flags := []string{"-o", "-v", "--output", "--verbose"}

	tests := []struct {
		name      string
		mode      inputMode
		word      string
		wordStart int
		want      []string
	}{
		{"parse_option", modeParse, "--ver", 0, flags},
		{"parse_later_word", modeParse, "-", 3, flags},
		{"parse_bare_value", modeParse, "file", 0, nil},
		{"parse_attached_value", modeParse, "--output=x", 0, nil},
		{"ctrl_first_word", modeCtrl, "li", 0, ctrlCommands},
		{"ctrl_argument", modeCtrl, "v", 4, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := candidates(s, tt.mode, tt.word, tt.wordStart)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("candidates(%q) mismatch (-want +got):\n%s", tt.word, diff)
			}
		})
	}
}

func TestRenderCandidateBar(t *testing.T) {
	t.Parallel()

	m := testModel(t, "v|verbose", "version", "q")

	m = typeText(m, "--ver")
	if len(m.matches) != 2 {
		t.Fatalf("matches for --ver = %d, want 2", len(m.matches))
	}

	if got := renderCandidateBar(m.matches, -1, false, 0); got != "" {
		t.Errorf("renderCandidateBar(width 0) = %q, want empty", got)
	}

	if got := renderCandidateBar(nil, -1, false, 80); got != "" {
		t.Errorf("renderCandidateBar(no matches) = %q, want empty", got)
	}

	if got := renderCandidateBar(m.matches, 0, true, 80); got == "" {
		t.Error("renderCandidateBar returned empty bar for two matches")
	}
}
