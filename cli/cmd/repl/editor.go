package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/argot/log"
)

const defaultEditor = "vi"

// editHeader starts every file handed to the editor.
const editHeader = `# One option descriptor per line. Blank lines and lines starting with #
# are ignored. Save an empty file to cancel.
`

// editCommand implements [tea.ExecCommand] for the edit-register-retry
// loop. It writes the session's descriptors to a temp file, opens the
// user's editor, and loads the result into the session. When the edited
// descriptors do not register, the user is prompted to re-edit; declining
// exits the program.
type editCommand struct {
	session   *Session
	ctxFunc   func() context.Context
	logger    log.Logger
	cancelled bool
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. If the user declines to re-edit after an
// error, it returns [ErrEditDeclined].
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp(os.TempDir(), "argot-repl-*.txt")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	f.Close()

	content := editHeader + strings.Join(c.session.Descriptors(), "\n") + "\n"

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath); err != nil {
			return err
		}

		data, err := os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		descriptors, empty := parseDescriptors(string(data))
		if empty {
			c.cancelled = true

			return nil
		}

		loadErr := c.session.Load(descriptors)
		c.logger.TraceContext(ctx, "editor load attempt",
			slog.Int("descriptors", len(descriptors)),
			slog.Bool("success", loadErr == nil),
		)

		if loadErr == nil {
			return nil
		}

		fmt.Fprintf(c.stderr, "\nError: %s\n", loadErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}

		content = string(data)
	}
}

// parseDescriptors splits edited text into descriptors. It reports empty
// when the text has no content at all, comments included.
func parseDescriptors(text string) (descriptors []string, empty bool) {
	if strings.TrimSpace(text) == "" {
		return nil, true
	}

	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		descriptors = append(descriptors, line)
	}

	return descriptors, false
}

// runEditor launches the user's editor on the given file path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
