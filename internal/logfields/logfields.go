package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyCompileID  = "compile_id"
	KeyPath       = "path"
	KeyOutput     = "output"
	KeyFiles      = "files"
	KeyChanged    = "changed"
	KeyDurationMS = "duration_ms"
	KeyBackend    = "backend"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func CompileID(id string) slog.Attr   { return slog.String(KeyCompileID, id) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Output(p string) slog.Attr       { return slog.String(KeyOutput, p) }
func Files(n int) slog.Attr           { return slog.Int(KeyFiles, n) }
func Changed(p string) slog.Attr      { return slog.String(KeyChanged, p) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Backend(b string) slog.Attr      { return slog.String(KeyBackend, b) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
