// ABOUTME: Effective permission resolution from per-key overrides and environment
// ABOUTME: Includes the sends-requires-writes normalization step

package permissions

import (
	"log/slog"
	"os"

	"github.com/iterable-tools/iterable-mcp/internal/keystore"
)

// Effective is the resolved permission set for one server session. Computed
// once at startup and threaded explicitly; never re-read mid-request.
type Effective struct {
	AllowPII    bool
	AllowWrites bool
	AllowSends  bool
}

// Getenv abstracts environment lookup so tests can inject values.
type Getenv func(key string) string

// Resolve merges per-key overrides over process environment defaults. For
// each flag independently: an override wins when present, otherwise the
// environment value is used. Only the literal string "true" counts as true;
// everything else, including absence, is false.
func Resolve(overrides map[string]string, getenv Getenv) Effective {
	if getenv == nil {
		getenv = os.Getenv
	}
	return Effective{
		AllowPII:    resolveFlag(overrides, keystore.EnvUserPII, getenv),
		AllowWrites: resolveFlag(overrides, keystore.EnvEnableWrites, getenv),
		AllowSends:  resolveFlag(overrides, keystore.EnvEnableSends, getenv),
	}
}

func resolveFlag(overrides map[string]string, key string, getenv Getenv) bool {
	if v, ok := overrides[key]; ok {
		return v == "true"
	}
	return getenv(key) == "true"
}

// Normalize enforces that sends are never reachable without writes. Kept
// separate from the filter so the filter's three rules stay auditable on
// their own.
func Normalize(eff Effective, logger *slog.Logger) Effective {
	if eff.AllowSends && !eff.AllowWrites {
		if logger != nil {
			logger.Warn("sends enabled without writes; disabling sends",
				"hint", "set "+keystore.EnvEnableWrites+"=true to allow send tools",
			)
		}
		eff.AllowSends = false
	}
	return eff
}
