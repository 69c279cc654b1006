// Package log provides a concurrency-safe leveled logger built on
// [log/slog].
//
// Loggers are configured with functional options when created:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("rfc3339nano"),
//		log.WithCaller(true))
//
// and derived with [Logger.Wrap] (new options) or [Logger.With] (attributes).
// The zero [Logger] discards everything.
//
// A [LevelTrace] level below [LevelDebug] is used by the option engine to
// report every token and binding it processes.
//
// The package-level functions ([Info], [Error], ...) write through a default
// logger that [Config] reconfigures; the CLI does so while parsing its own
// flags.
//
// With [WithPretty] enabled, output is styled for a terminal using lipgloss;
// [FormatText] yields one line per record, [FormatJSON] an indented block.
package log
