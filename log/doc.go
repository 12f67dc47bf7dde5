// Package log builds [log/slog] handlers from CLI flags.
//
// Levels are [LevelError], [LevelWarn], [LevelInfo], and [LevelDebug].
// Formats are [FormatJSON], [FormatLogfmt], and the colored [FormatText]
// rendered by charm log. [Config] registers the --log-level and --log-format
// flags with cobra completions:
//
//	cfg := log.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	cfg.RegisterCompletions(rootCmd)
//
//	handler, err := cfg.NewHandler(os.Stderr)
//	slog.SetDefault(slog.New(handler))
//
// Logs go to stderr so they never interleave with frames written to stdout.
//
// A [Publisher] turns log records into status lines for an interactive view.
// Pair it with [io.MultiWriter] to keep writing to stderr as well:
//
//	pub := log.NewPublisher()
//	handler := log.NewHandler(io.MultiWriter(os.Stderr, pub), log.LevelInfo, log.FormatLogfmt)
//	status := pub.Last()
package log
