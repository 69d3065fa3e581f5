package logfields

import "log/slog"

// Canonical log field names shared across packages.
const (
	KeyEndpoint = "endpoint"
	KeyDto      = "dto"
	KeyRegion   = "region"
	KeyURL      = "url"
	KeyPath     = "path"
	KeyDialect  = "dialect"
	KeyStage    = "stage"
	KeyAttempt  = "attempt"
	KeyCount    = "count"
	KeyStatus   = "status"
	KeyRef      = "ref"
	KeyDuration = "duration_ms"
	KeyError    = "error"
)

func Endpoint(name string) slog.Attr { return slog.String(KeyEndpoint, name) }
func Dto(name string) slog.Attr      { return slog.String(KeyDto, name) }
func Region(code string) slog.Attr   { return slog.String(KeyRegion, code) }
func URL(u string) slog.Attr         { return slog.String(KeyURL, u) }
func Path(p string) slog.Attr        { return slog.String(KeyPath, p) }
func Dialect(name string) slog.Attr  { return slog.String(KeyDialect, name) }
func Stage(name string) slog.Attr    { return slog.String(KeyStage, name) }
func Attempt(n int) slog.Attr        { return slog.Int(KeyAttempt, n) }
func Count(n int) slog.Attr          { return slog.Int(KeyCount, n) }
func Status(code int) slog.Attr      { return slog.Int(KeyStatus, code) }
func Ref(ref string) slog.Attr       { return slog.String(KeyRef, ref) }
func DurationMS(ms int64) slog.Attr  { return slog.Int64(KeyDuration, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
