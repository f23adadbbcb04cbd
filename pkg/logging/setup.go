package logging

import (
	"io"
	"log/slog"
)

// Setup installs the process-wide slog logger.
//
// Without debug, everything is discarded: the tracker is a background
// reporter and must stay silent. With debug, records at debug level and up
// are written to a rotating file at path.
func Setup(debug bool, path string) (io.Closer, error) {
	if !debug {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return nil, nil
	}

	file, err := NewRotatingFile(path)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return file, nil
}

// Fallback installs a stderr logger when the file logger could not be set up.
func Fallback(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
