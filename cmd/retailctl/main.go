// Command retailctl drives the back-office session engine from a terminal:
// sign in, inspect the decoded session, switch stores and manage the trial.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/Baodng2402/360-Retail-Web-sub000/config"
	"github.com/Baodng2402/360-Retail-Web-sub000/internal/bootstrap"
	apperrors "github.com/Baodng2402/360-Retail-Web-sub000/internal/errors"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx     context.Context
	Logger  *slog.Logger
	Config  config.AppConfig
	Runtime *bootstrap.Runtime

	Stdin  io.Reader
	Stdout io.Writer
}

// errUsage marks a bad invocation; main exits with status 2.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code) //nolint:forbidigo // CLI must propagate command status to the shell
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		_ = printUsage(stderr)
		return 2
	}

	cmdName := args[0]
	cmd, ok := commands()[cmdName]
	if !ok {
		_ = writef(stderr, "unknown command %q\n\n", cmdName)
		_ = printUsage(stderr)
		return 2
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		_ = writef(stderr, "load config: %v\n", err)
		return 1
	}
	logger := bootstrap.InitLogger(stderr, cfg.Observability.Log, cfg.IsDev)

	rt, err := bootstrap.BuildRuntime(ctx, bootstrap.RuntimeDeps{Config: &cfg, Logger: logger})
	if err != nil {
		logger.ErrorContext(ctx, "build runtime", "error", err)
		return 1
	}
	defer func() {
		if closeErr := rt.Close(); closeErr != nil {
			logger.WarnContext(ctx, "runtime close failed", "error", closeErr)
		}
	}()

	cmdCtx := &commandContext{
		Ctx:     ctx,
		Logger:  logger,
		Config:  cfg,
		Runtime: rt,
		Stdin:   stdin,
		Stdout:  stdout,
	}
	if runErr := cmd.run(cmdCtx, args[1:]); runErr != nil {
		switch {
		case errors.Is(runErr, errUsage):
			_ = writeln(stderr, runErr)
			return 2
		case errors.Is(runErr, errAccessDenied):
			return 1
		}
		logger.DebugContext(ctx, "command failed", "command", cmdName, "error", runErr)
		_ = writeln(stderr, apperrors.UserMessage(runErr))
		return 1
	}
	return 0
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Sign in with email and password (password read from stdin)",
			run:         runLogin,
		},
		"register": {
			name:        "register",
			description: "Create an account (password read from stdin)",
			run:         runRegister,
		},
		"logout": {
			name:        "logout",
			description: "Forget the stored credential",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			description: "Show the session decoded from the stored credential",
			run:         runWhoAmI,
		},
		"me": {
			name:        "me",
			description: "Show the claims the server reports for the stored credential",
			run:         runMe,
		},
		"refresh": {
			name:        "refresh",
			description: "Reissue the credential for the current store",
			run:         runRefresh,
		},
		"switch-store": {
			name:        "switch-store",
			description: "Rescope the session to another store",
			run:         runSwitchStore,
		},
		"change-password": {
			name:        "change-password",
			description: "Change the password (current, new, confirm read from stdin)",
			run:         runChangePassword,
		},
		"trial-status": {
			name:        "trial-status",
			description: "Show the server-side subscription status",
			run:         runTrialStatus,
		},
		"start-trial": {
			name:        "start-trial",
			description: "Create a trial store and switch to it",
			run:         runStartTrial,
		},
		"sync-status": {
			name:        "sync-status",
			description: "Refresh the credential if the server-side status changed",
			run:         runSyncStatus,
		},
		"guard": {
			name:        "guard",
			description: "Check whether the session may open a feature",
			run:         runGuard,
		},
		"prefs": {
			name:        "prefs",
			description: "Show or set notification preferences (file backend only)",
			run:         runPrefs,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: retailctl <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-18s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
