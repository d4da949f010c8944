package fixtures

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/tiewatch/internal/adapters/feed/fixture"
	"github.com/okian/tiewatch/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run generates a fixture, writes it and reads it back.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{
		StartTime: time.Now(),
	}

	doc, err := Generate(ctx, config, stats)
	if err != nil {
		return nil, fmt.Errorf("fixture generation failed: %w", err)
	}

	path := config.OutputFile
	if path == "" {
		path = "groups_" + time.Now().Format("20060102_150405") + ".yaml"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := fixture.Save(path, doc); err != nil {
		return nil, fmt.Errorf("failed to save fixture: %w", err)
	}
	stats.OutputFile = path

	if err := verify(path, stats); err != nil {
		return nil, err
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	logger.Get().Info(ctx, "fixture written",
		logger.String("file", path),
		logger.Int("groups", stats.Groups),
		logger.Int("matches", stats.Matches),
		logger.Int("pending", stats.Pending),
		logger.Duration("took", stats.Duration))
	return stats, nil
}

// verify reads the written file back and checks every match survived.
func verify(path string, stats *Stats) error {
	doc, err := fixture.Load(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerification, err)
	}
	if got := len(doc.Records()); got != stats.Matches {
		return fmt.Errorf("%w: %s holds %d matches, generated %d", ErrVerification, path, got, stats.Matches)
	}
	for _, rec := range doc.Records() {
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("%w: group %s: %w", ErrVerification, rec.Group, err)
		}
	}
	return nil
}
