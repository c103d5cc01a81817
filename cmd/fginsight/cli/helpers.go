package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/fginsight/fginsight/internal/analyzer"
	"github.com/fginsight/fginsight/internal/archive"
	"github.com/fginsight/fginsight/internal/model"
	"github.com/fginsight/fginsight/internal/snapshot"
)

// dataDir holds the --data-dir persistent flag value (set on root command).
var dataDir string

// resolveDataDir returns the data directory from --data-dir flag,
// FGINSIGHT_DATA_DIR env var, or ~/.fginsight as fallback.
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if envDir := os.Getenv("FGINSIGHT_DATA_DIR"); envDir != "" {
		return envDir
	}
	home, _ := os.UserHomeDir()
	return home + "/.fginsight"
}

// openSnapshotStore opens the SQLite snapshot store, defaulting to
// ~/.fginsight if no data dir was specified.
func openSnapshotStore() (*snapshot.Store, error) {
	return snapshot.NewStore(resolveDataDir())
}

// newLogger builds the CLI logger. --verbose raises it to debug.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// configuredLimits starts from the built-in archive limits and applies
// any overrides from the config file or environment.
func configuredLimits() archive.Limits {
	limits := archive.DefaultLimits()
	if v := viper.GetInt64("limits.max_archive_bytes"); v > 0 {
		limits.MaxArchiveBytes = v
	}
	if v := viper.GetInt("limits.max_entries"); v > 0 {
		limits.MaxEntries = v
	}
	if v := viper.GetInt64("limits.max_uncompressed_bytes"); v > 0 {
		limits.MaxUncompressedBytes = v
	}
	return limits
}

// analyzeArchive runs the full analysis on one archive. Phase progress is
// shown only when stderr is a terminal, so piped output stays clean.
func analyzeArchive(path string) (*model.Result, error) {
	opts := analyzer.Options{
		Logger: newLogger(),
		Limits: configuredLimits(),
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		opts.Progress = func(percent int, phase string) {
			fmt.Fprintf(os.Stderr, "\r[%3d%%] %-28s", percent, phase)
			if percent >= 100 {
				fmt.Fprint(os.Stderr, "\r\033[K")
			}
		}
	}
	return analyzer.New(opts).Analyze(context.Background(), path)
}

// marshalYAML renders v as YAML by round-tripping through its JSON
// encoding, so YAML output carries the same key names as JSON output.
func marshalYAML(v interface{}) ([]byte, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var tree interface{}
	if err := json.Unmarshal(jsonBytes, &tree); err != nil {
		return nil, err
	}
	return yaml.Marshal(tree)
}

// writeOutput writes data to outputFile, or to stdout when no file is
// given. A trailing newline is added if missing.
func writeOutput(outputFile string, data []byte) error {
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	if outputFile == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", outputFile, err)
	}
	fmt.Printf("Wrote %s\n", outputFile)
	return nil
}
