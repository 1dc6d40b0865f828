package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Baodng2402/360-Retail-Web-sub000/internal/adapters/credstore"
	domainauth "github.com/Baodng2402/360-Retail-Web-sub000/internal/domain/auth"
	"github.com/Baodng2402/360-Retail-Web-sub000/internal/ports"
	"github.com/Baodng2402/360-Retail-Web-sub000/internal/util"
)

const notificationPrefsKey = "notification_prefs"

var errAccessDenied = errors.New("access denied")

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	return nil
}

func runLogin(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "account email")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	password, err := readLines(cmdCtx.Stdin, 1)
	if err != nil {
		return err
	}

	res, err := cmdCtx.Runtime.Session.Login(cmdCtx.Ctx, ports.LoginInput{Email: *email, Password: password[0]})
	if err != nil {
		return err
	}
	if res.MustChangePassword {
		_ = writeln(cmdCtx.Stdout, "Password change required: run retailctl change-password.")
	}
	return printSession(cmdCtx.Stdout, cmdCtx.Runtime.Session.Snapshot(), storeOf(cmdCtx))
}

func runRegister(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet("register")
	email := fs.String("email", "", "account email")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	password, err := readLines(cmdCtx.Stdin, 1)
	if err != nil {
		return err
	}

	res, err := cmdCtx.Runtime.Session.Register(cmdCtx.Ctx, ports.RegisterInput{Email: *email, Password: password[0]})
	if err != nil {
		return err
	}
	msg := res.Message
	if msg == "" {
		msg = "Registration successful."
	}
	return writeln(cmdCtx.Stdout, msg)
}

func runLogout(cmdCtx *commandContext, _ []string) error {
	if err := cmdCtx.Runtime.Session.Logout(cmdCtx.Ctx); err != nil {
		return err
	}
	return writeln(cmdCtx.Stdout, "Signed out.")
}

func runWhoAmI(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet("whoami")
	asJSON := fs.Bool("json", false, "print the session as JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	sess, err := cmdCtx.Runtime.Gateway.MeFromLocalToken(cmdCtx.Ctx)
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(cmdCtx.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sess)
	}
	return printSession(cmdCtx.Stdout, sess, storeOf(cmdCtx))
}

func runMe(cmdCtx *commandContext, _ []string) error {
	claims, err := cmdCtx.Runtime.Gateway.Me(cmdCtx.Ctx)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(claims))
	for k := range claims {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(cmdCtx.Stdout, 0, 0, 2, ' ', 0)
	if err := writef(tw, "CLAIM\tVALUE\n"); err != nil {
		return err
	}
	for _, k := range keys {
		if err := writef(tw, "%s\t%s\n", k, claims[k]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func runRefresh(cmdCtx *commandContext, _ []string) error {
	if err := cmdCtx.Runtime.Session.Refresh(cmdCtx.Ctx); err != nil {
		return err
	}
	return printSession(cmdCtx.Stdout, cmdCtx.Runtime.Session.Snapshot(), storeOf(cmdCtx))
}

func runSwitchStore(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet("switch-store")
	id := fs.String("store-id", "", "target store id")
	name := fs.String("name", "", "store display name")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*id) == "" {
		return fmt.Errorf("%w: switch-store requires --store-id", errUsage)
	}

	target := domainauth.Store{ID: *id, StoreName: *name, IsActive: true}
	if err := cmdCtx.Runtime.Switcher.Switch(cmdCtx.Ctx, target); err != nil {
		return err
	}
	return printSession(cmdCtx.Stdout, cmdCtx.Runtime.Session.Snapshot(), storeOf(cmdCtx))
}

func runChangePassword(cmdCtx *commandContext, _ []string) error {
	lines, err := readLines(cmdCtx.Stdin, 3)
	if err != nil {
		return err
	}
	in := ports.ChangePasswordInput{
		CurrentPassword:    lines[0],
		NewPassword:        lines[1],
		ConfirmNewPassword: lines[2],
	}
	if err := cmdCtx.Runtime.Session.ChangePassword(cmdCtx.Ctx, in); err != nil {
		return err
	}
	return writeln(cmdCtx.Stdout, "Password changed.")
}

func runTrialStatus(cmdCtx *commandContext, _ []string) error {
	st, err := cmdCtx.Runtime.Gateway.CheckStoreTrial(cmdCtx.Ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmdCtx.Stdout, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"Status", string(st.Status)},
		{"Plan", orDash(st.PlanName)},
		{"Store", orDash(st.StoreID)},
		{"Has store", fmt.Sprint(st.HasStore)},
		{"Trial ends", formatDate(st.TrialEndDate)},
		{"Days remaining", formatInt(st.DaysRemaining)},
	}
	for _, r := range rows {
		if err := writef(tw, "%s:\t%s\n", r[0], r[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func runStartTrial(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet("start-trial")
	name := fs.String("store-name", "", "name of the trial store")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	res, err := cmdCtx.Runtime.Session.StartTrial(cmdCtx.Ctx, *name)
	if err != nil {
		return err
	}
	if res.Message != "" {
		_ = writeln(cmdCtx.Stdout, res.Message)
	}
	return printSession(cmdCtx.Stdout, cmdCtx.Runtime.Session.Snapshot(), storeOf(cmdCtx))
}

func runSyncStatus(cmdCtx *commandContext, _ []string) error {
	if err := cmdCtx.Runtime.Session.SyncStatus(cmdCtx.Ctx); err != nil {
		return err
	}
	return printSession(cmdCtx.Stdout, cmdCtx.Runtime.Session.Snapshot(), storeOf(cmdCtx))
}

func runGuard(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet("guard")
	requiresStore := fs.Bool("requires-store", false, "the feature operates on a store")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	sess := cmdCtx.Runtime.Session.Snapshot()
	allowed := domainauth.CanAccess(sess, *requiresStore)
	verdict := "allowed"
	if !allowed {
		verdict = "denied: select or create a store first"
	}
	if err := writef(cmdCtx.Stdout, "Access: %s\n", verdict); err != nil {
		return err
	}
	if domainauth.NeedsUpgrade(sess) {
		if err := writeln(cmdCtx.Stdout, "Subscription: upgrade required"); err != nil {
			return err
		}
	}
	if !allowed {
		return errAccessDenied
	}
	return nil
}

func runPrefs(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet("prefs")
	set := fs.String("set", "", "JSON object to store as notification preferences")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	file, ok := cmdCtx.Runtime.Store.(*credstore.File)
	if !ok {
		return fmt.Errorf("%w: prefs requires CREDENTIALS_BACKEND=file", errUsage)
	}

	if *set != "" {
		raw := json.RawMessage(*set)
		if !json.Valid(raw) {
			return fmt.Errorf("%w: --set must be valid JSON", errUsage)
		}
		if err := file.SetValue(cmdCtx.Ctx, notificationPrefsKey, raw); err != nil {
			return err
		}
	}

	raw, found, err := file.Value(cmdCtx.Ctx, notificationPrefsKey)
	if err != nil {
		return err
	}
	if !found {
		return writeln(cmdCtx.Stdout, "{}")
	}
	return writeln(cmdCtx.Stdout, string(raw))
}

func storeOf(cmdCtx *commandContext) *domainauth.Store {
	st, ok := cmdCtx.Runtime.Switcher.CurrentStore()
	if !ok {
		return nil
	}
	return &st
}

func printSession(w io.Writer, sess domainauth.Session, store *domainauth.Store) error {
	if sess.IsAnonymous() {
		return writeln(w, "Not signed in.")
	}

	storeLabel := "-"
	if store != nil {
		storeLabel = store.ID
		if store.StoreName != "" {
			storeLabel = fmt.Sprintf("%s (%s)", store.StoreName, store.ID)
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"User", sess.UserID},
		{"Email", orDash(sess.Email)},
		{"Role", orDash(string(sess.Role))},
		{"Status", string(sess.Status)},
		{"Store", storeLabel},
		{"Store role", orDash(string(sess.StoreRole))},
	}
	if sess.Status == domainauth.StatusTrial {
		rows = append(rows,
			[2]string{"Trial expired", fmt.Sprint(sess.TrialExpired)},
			[2]string{"Trial ends", formatDate(sess.TrialEndDate)},
			[2]string{"Days remaining", formatInt(sess.TrialDaysRemaining)},
		)
	}
	if sess.SubscriptionExpired {
		rows = append(rows, [2]string{"Subscription", "expired"})
	}
	if sess.ExpiresAt != nil {
		rows = append(rows, [2]string{"Token expires", fmt.Sprintf("%s (%s)",
			sess.ExpiresAt.UTC().Format(time.RFC3339), util.FormatRemaining(time.Until(*sess.ExpiresAt)))})
	}
	for _, r := range rows {
		if err := writef(tw, "%s:\t%s\n", r[0], r[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// readLines reads n newline-terminated values, e.g. passwords piped on stdin.
func readLines(r io.Reader, n int) ([]string, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: expected %d line(s) on stdin", errUsage, n)
	}
	sc := bufio.NewScanner(r)
	out := make([]string, 0, n)
	for len(out) < n && sc.Scan() {
		out = append(out, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if len(out) < n {
		return nil, fmt.Errorf("%w: expected %d line(s) on stdin", errUsage, n)
	}
	return out, nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.DateOnly)
}

func formatInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}
