package log_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/termplay/log"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		level     string
		format    string
		wantLevel log.Level
		wantFmt   log.Format
		err       error
	}{
		"defaults": {
			level: "info", format: "text",
			wantLevel: log.LevelInfo, wantFmt: log.FormatText,
		},
		"warning alias": {
			level: "warning", format: "logfmt",
			wantLevel: log.LevelWarn, wantFmt: log.FormatLogfmt,
		},
		"upper case": {
			level: "DEBUG", format: "JSON",
			wantLevel: log.LevelDebug, wantFmt: log.FormatJSON,
		},
		"unknown level": {
			level: "loud", format: "text",
			err: log.ErrUnknownLogLevel,
		},
		"unknown format": {
			level: "error", format: "xml",
			err: log.ErrUnknownLogFormat,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			lvl, lvlErr := log.ParseLevel(tc.level)
			format, fmtErr := log.ParseFormat(tc.format)

			_, err := log.NewHandlerFromStrings(&bytes.Buffer{}, tc.level, tc.format)
			if tc.err != nil {
				require.ErrorIs(t, err, log.ErrInvalidArgument)
				require.ErrorIs(t, err, tc.err)

				return
			}

			require.NoError(t, err)
			require.NoError(t, lvlErr)
			require.NoError(t, fmtErr)
			assert.Equal(t, tc.wantLevel, lvl)
			assert.Equal(t, tc.wantFmt, format)
		})
	}
}

// Records as written by the commands: a session summary at info and a
// dropped audio track at warn.
func TestNewHandler(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		check  func(t *testing.T, out string)
		format log.Format
		level  log.Level
	}{
		"json": {
			format: log.FormatJSON,
			level:  log.LevelInfo,
			check: func(t *testing.T, out string) {
				t.Helper()

				lines := bytes.Split(bytes.TrimSpace([]byte(out)), []byte("\n"))
				require.Len(t, lines, 2)

				var rec map[string]any
				require.NoError(t, json.Unmarshal(lines[0], &rec))
				assert.Equal(t, "playback finished behind the clock", rec["msg"])
				assert.InDelta(t, 3, rec["dropped"], 0)
			},
		},
		"logfmt": {
			format: log.FormatLogfmt,
			level:  log.LevelInfo,
			check: func(t *testing.T, out string) {
				t.Helper()
				assert.Contains(t, out, `msg="playback finished behind the clock" dropped=3`)
				assert.Contains(t, out, "level=WARN")
				assert.Contains(t, out, "path=audio.wav")
			},
		},
		"text": {
			format: log.FormatText,
			level:  log.LevelInfo,
			check: func(t *testing.T, out string) {
				t.Helper()
				assert.Contains(t, out, "playback finished behind the clock")
				assert.Contains(t, out, "dropped=3")
				assert.Contains(t, out, "audio unavailable")
			},
		},
		"text at error level": {
			format: log.FormatText,
			level:  log.LevelError,
			check: func(t *testing.T, out string) {
				t.Helper()
				assert.Empty(t, out)
			},
		},
		"json at warn level": {
			format: log.FormatJSON,
			level:  log.LevelWarn,
			check: func(t *testing.T, out string) {
				t.Helper()
				assert.NotContains(t, out, "playback finished")
				assert.Contains(t, out, "audio unavailable")
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			logger := slog.New(log.NewHandler(&buf, tc.level, tc.format))
			logger.Info("playback finished behind the clock", slog.Int("dropped", 3))
			logger.Warn("audio unavailable", slog.String("path", "audio.wav"))
			logger.Debug("pass complete")

			assert.NotContains(t, buf.String(), "pass complete")
			tc.check(t, buf.String())
		})
	}
}

func TestConfig(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		args      []string
		wantDebug bool
		wantLevel slog.Level
		err       bool
	}{
		"defaults": {
			wantLevel: slog.LevelInfo,
		},
		"debug": {
			args:      []string{"--log-level", "debug"},
			wantDebug: true,
			wantLevel: slog.LevelDebug,
		},
		"quiet json": {
			args:      []string{"--log-level", "error", "--log-format", "json"},
			wantLevel: slog.LevelError,
		},
		"bad format": {
			args: []string{"--log-format", "yaml"},
			err:  true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := log.NewConfig()

			cmd := &cobra.Command{Use: "termplay"}
			cfg.RegisterFlags(cmd.Flags())
			require.NoError(t, cmd.Flags().Parse(tc.args))

			assert.Equal(t, tc.wantDebug, cfg.Debug())

			handler, err := cfg.NewHandler(&bytes.Buffer{})
			if tc.err {
				require.ErrorIs(t, err, log.ErrInvalidArgument)

				return
			}

			require.NoError(t, err)
			assert.True(t, handler.Enabled(t.Context(), tc.wantLevel))
			assert.False(t, handler.Enabled(t.Context(), tc.wantLevel-1))
		})
	}
}

func TestRegisterCompletions(t *testing.T) {
	t.Parallel()

	cfg := log.Flags{Level: "verbosity", Format: "style"}.NewConfig()

	cmd := &cobra.Command{Use: "termplay"}
	cfg.RegisterFlags(cmd.Flags())
	require.NoError(t, cfg.RegisterCompletions(cmd))

	want := map[string][]string{
		"verbosity": log.GetAllLevelStrings(),
		"style":     log.GetAllFormatStrings(),
	}

	for flag, values := range want {
		fn, ok := cmd.GetFlagCompletionFunc(flag)
		require.True(t, ok, flag)

		got, directive := fn(cmd, nil, "")
		assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
		assert.Equal(t, values, got)
	}
}

func TestHandlerToPublisher(t *testing.T) {
	t.Parallel()

	pub := log.NewPublisher()
	t.Cleanup(func() { _ = pub.Close() })

	sub := pub.Subscribe()

	cfg := log.NewConfig()
	cfg.Level = "info"
	cfg.Format = "logfmt"

	handler, err := cfg.NewHandler(pub)
	require.NoError(t, err)

	slog.New(handler).Warn("skipping source", slog.String("source", "a.mp4"))

	line := <-sub.C()
	assert.Contains(t, line, `msg="skipping source" source=a.mp4`)
	assert.Equal(t, line, pub.Last())
}
