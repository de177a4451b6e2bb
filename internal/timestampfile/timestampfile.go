// Package timestampfile reads and writes the importer's last-harvest
// marker, ported from the reference implementation's
// read_timestamp/write_timestamp: a single line holding a UTC
// datestamp, whose absence or corruption means "do a full harvest"
// rather than an error.
package timestampfile

import (
	"errors"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/turahe/kuha-go/internal/datecodec"
)

// Read returns the timestamp stored at path, or nil when the file is
// unset, missing, or unparseable -- all three are treated as "force a
// full harvest" by the importer. An unset path is logged at warning
// level, a missing file at info, and a read failure or unparseable
// contents at error.
func Read(log *zap.Logger, path string) *time.Time {
	if path == "" {
		log.Warn("timestampfile: no path configured")
		return nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Info("timestampfile: file does not exist")
		} else {
			log.Error("timestampfile: failed to read", zap.String("path", path), zap.Error(err))
		}
		return nil
	}

	t, _, err := datecodec.Parse(strings.TrimSpace(string(contents)), datecodec.StartOfDay)
	if err != nil {
		log.Error("timestampfile: invalid contents", zap.String("path", path))
		return nil
	}
	return &t
}

// Write records t at path in OAI-PMH datestamp form. A missing path is
// a silent no-op, matching the source's "not configured" behavior.
func Write(log *zap.Logger, path string, t time.Time) {
	if path == "" {
		return
	}
	if err := os.WriteFile(path, []byte(datecodec.Format(t)), 0o644); err != nil {
		log.Error("timestampfile: failed to write", zap.String("path", path), zap.Error(err))
	}
}
