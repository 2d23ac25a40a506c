package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath       = "path"
	KeyDocument   = "document"
	KeyTemplate   = "template"
	KeyRule       = "rule"
	KeyAction     = "action"
	KeyStage      = "stage"
	KeyRunID      = "run_id"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Document(p string) slog.Attr      { return slog.String(KeyDocument, p) }
func Template(p string) slog.Attr      { return slog.String(KeyTemplate, p) }
func Rule(name string) slog.Attr       { return slog.String(KeyRule, name) }
func Action(kind string) slog.Attr     { return slog.String(KeyAction, kind) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func RunID(id string) slog.Attr        { return slog.String(KeyRunID, id) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
