package lndl

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/lndl/internal/utils"
)

const (
	// DefaultLevel is the threshold of loggers and sinks built without one.
	DefaultLevel = InfoLevel
	// DefaultTemplate is the template used by formatters built without one.
	DefaultTemplate = "${log_time}|${logger_name}|${logger_tag}|${level}|${messages}"
	// DefaultTimeFormat is the layout of the log_time field.
	DefaultTimeFormat = "2006-01-02 15:04:05"
	// DefaultFlushCountLimit is the number of buffered messages that forces a flush.
	DefaultFlushCountLimit = 10
	// DefaultLogDir is the directory of file sinks built without one.
	DefaultLogDir = "./logs"
	// DefaultSwapNameTemplate names the files of a file sink.
	DefaultSwapNameTemplate = "${name}-${counter}.log"
	// LogFilePermissions are the default file permissions for log files.
	LogFilePermissions = 0o644
	// LogDirPermissions are the permissions of directories created for log files.
	LogDirPermissions = 0o755
	// MaxResolvePasses bounds the deferred-construction loop of the config resolver.
	MaxResolvePasses = 1000
)

// OpenStream returns the writer named by target: "stdout", "stderr" or a file
// path. Files are created if needed and opened in append mode. An empty
// target is fallback.
func OpenStream(target string, fallback io.Writer) (io.Writer, error) {
	switch strings.ToLower(strings.TrimSpace(target)) {
	case "":
		return fallback, nil
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		path, err := utils.CleanPath(target)
		if err != nil {
			return nil, ewrap.Wrap(err, "invalid output path")
		}

		err = utils.EnsureDir(filepath.Dir(path), LogDirPermissions)
		if err != nil {
			return nil, err
		}

		//nolint:gosec // G304: the path is cleaned by utils.CleanPath.
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, LogFilePermissions)
		if err != nil {
			return nil, ewrap.Wrapf(err, "failed to open log file %s", path)
		}

		return file, nil
	}
}
