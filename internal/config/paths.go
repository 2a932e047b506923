package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds the resolved, absolute locations of one run.
type Paths struct {
	WorkingDir   string
	InputDir     string
	OutputFile   string
	FilterOutput string
	MetricsFile  string
	LogFile      string
}

// ResolvePaths turns the configured paths into absolute ones. Relative
// paths are taken against the current working directory, which is where the
// report files live when the tool is run by hand.
func (c *Config) ResolvePaths() (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	p := &Paths{
		WorkingDir:   wd,
		InputDir:     resolve(wd, c.Paths.InputDir),
		OutputFile:   resolve(wd, c.Paths.OutputFile),
		FilterOutput: resolve(wd, c.Paths.FilterOutput),
		MetricsFile:  resolve(wd, c.Paths.MetricsFile),
		LogFile:      resolve(wd, c.Logging.FilePath),
	}
	return p, nil
}

func resolve(base, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("working", p.WorkingDir),
			slog.String("input", p.InputDir),
		),
		slog.Group("files",
			slog.String("output", p.OutputFile),
			slog.String("filter_output", p.FilterOutput),
			slog.String("metrics", p.MetricsFile),
			slog.String("log", p.LogFile),
		))
}
