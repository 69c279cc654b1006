package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ardnew/argot/getopt"
	"github.com/ardnew/argot/manifest"
)

// Inspect shows how an option set compiles: the aliases, arity, checker,
// and rules of every registered option. Given a manifest but no command, it
// lists the manifest's commands instead.
type Inspect struct {
	Options `embed:""`

	All    bool   `help:"Include hidden manifest commands."`
	Format string `default:"text" enum:"text,json,yaml" help:"Output format (${enum})." short:"f"`
}

// optionInfo describes one registered option.
type optionInfo struct {
	ID          int      `json:"id"                    yaml:"id"`
	Option      string   `json:"option"                yaml:"option"`
	Descriptor  string   `json:"descriptor"            yaml:"descriptor"`
	Arg         string   `json:"arg"                   yaml:"arg"`
	Min         int      `json:"min"                   yaml:"min"`
	Max         *int     `json:"max,omitempty"         yaml:"max,omitempty"`
	Checker     string   `json:"checker,omitempty"     yaml:"checker,omitempty"`
	Rules       []string `json:"rules"                 yaml:"rules"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

func describe(opt *getopt.Option) optionInfo {
	info := optionInfo{
		ID:          opt.ID(),
		Option:      opt.String(),
		Descriptor:  opt.Descriptor(),
		Arg:         opt.ArgType().String(),
		Min:         opt.Min(),
		Checker:     opt.Checker(),
		Description: opt.Description(),
	}

	if hi, ok := opt.Max(); ok {
		info.Max = &hi
	}

	for _, rule := range opt.Rules() {
		info.Rules = append(info.Rules, rule.String())
	}

	return info
}

func (i optionInfo) bounds() string {
	hi := "∞"
	if i.Max != nil {
		hi = strconv.Itoa(*i.Max)
	}

	return strconv.Itoa(i.Min) + ".." + hi
}

//nolint:gochecknoglobals
var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func render(w io.Writer, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// Run executes the inspect command.
func (i *Inspect) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if i.Manifest != "" && i.Command == "" {
		m, err := loadManifest(ctx, i.Manifest)
		if err != nil {
			return err
		}

		return i.commands(ctx, m)
	}

	set, err := i.load(ctx)
	if err != nil {
		return err
	}

	var infos []optionInfo

	for opt := range set.registry.Options() {
		infos = append(infos, describe(opt))
	}

	for opt := range set.registry.Positionals() {
		infos = append(infos, describe(opt))
	}

	w := outputFrom(ctx)

	if i.Format != FormatText {
		return encode(ctx, w, i.Format, infos)
	}

	rows := make([][]string, 0, len(infos))

	for _, info := range infos {
		rows = append(rows, []string{
			strconv.Itoa(info.ID),
			info.Option,
			info.Arg,
			info.bounds(),
			info.Checker,
			strings.Join(info.Rules, " "),
			info.Description,
		})
	}

	return render(w,
		[]string{"ID", "OPTION", "ARG", "COUNT", "CHECKER", "RULES", "DESCRIPTION"},
		rows,
	)
}

// commandInfo describes one manifest command.
type commandInfo struct {
	Name        string `json:"name"                  yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Options     int    `json:"options"               yaml:"options"`
	Args        int    `json:"args"                  yaml:"args"`
	Hidden      bool   `json:"hidden,omitempty"      yaml:"hidden,omitempty"`
}

func (i *Inspect) commands(ctx context.Context, m *manifest.Manifest) error {
	var infos []commandInfo

	for _, name := range m.Names(i.All) {
		c, _ := m.Command(name)
		infos = append(infos, commandInfo{
			Name:        name,
			Description: c.Description,
			Options:     len(c.Options),
			Args:        len(c.Args),
			Hidden:      c.IsHidden(),
		})
	}

	w := outputFrom(ctx)

	if i.Format != FormatText {
		return encode(ctx, w, i.Format, infos)
	}

	rows := make([][]string, 0, len(infos))

	for _, info := range infos {
		rows = append(rows, []string{
			info.Name,
			strconv.Itoa(info.Options),
			strconv.Itoa(info.Args),
			info.Description,
		})
	}

	return render(w, []string{"COMMAND", "OPTIONS", "ARGS", "DESCRIPTION"}, rows)
}
