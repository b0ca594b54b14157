package preflight

import (
	"context"

	"cuesync/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the local readiness checks for cfg. The daemon check is
// separate because only the CLI reaches for a running daemon.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckCredential(cfg),
		CheckTargetLanguage(cfg),
		CheckStore(ctx, cfg),
	}
	return results
}

// Failed filters results down to failing checks.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
