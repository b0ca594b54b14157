package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/text/language"

	"cuesync/internal/api"
	"cuesync/internal/config"
	"cuesync/internal/store"
	"cuesync/internal/translate"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCredential verifies the active provider has an API key and a
// supported name.
func CheckCredential(cfg *config.Config) Result {
	name := "Translation provider"
	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if err := cfg.RequireCredential(); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (API key missing)", cfg.Translation.Provider)}
	}
	provider, err := translate.New(cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", provider.Name(), cfg.ActiveProvider().Model)}
}

// CheckTargetLanguage verifies the target language is a valid tag and
// reports its display name.
func CheckTargetLanguage(cfg *config.Config) Result {
	const name = "Target language"
	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	tag := strings.TrimSpace(cfg.Translation.TargetLanguage)
	if _, err := language.Parse(tag); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%q is not a language tag", tag)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", tag, translate.LanguageName(tag))}
}

// CheckStore opens and closes the configured store.
func CheckStore(ctx context.Context, cfg *config.Config) Result {
	const name = "Subtitle store"
	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	st, err := store.Open(checkCtx, cfg)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	defer st.Close()
	entries, err := st.ListSubtitles(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d saved)", cfg.Store.Backend, len(entries))}
}

// CheckDaemon asks a running daemon for its status.
func CheckDaemon(ctx context.Context, cfg *config.Config) Result {
	const name = "Daemon"
	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	client := api.NewClient(cfg.API.Bind, cfg.API.Token, nil)
	status, err := client.Status(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: "not running (" + summarizeError(err) + ")"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("running (pid %d, %s)", status.PID, cfg.API.Bind)}
}

func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return "unreachable"
	}
	return err.Error()
}
