package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	domainauth "github.com/Baodng2402/360-Retail-Web-sub000/internal/domain/auth"
	apperrors "github.com/Baodng2402/360-Retail-Web-sub000/internal/errors"
	"github.com/Baodng2402/360-Retail-Web-sub000/internal/ports"
)

// StoreSwitcherOptions groups dependencies for StoreSwitcher.
type StoreSwitcherOptions struct {
	Session *SessionContext   // Required
	Gateway ports.AuthGateway // Optional: defaults to the session's gateway
	Logger  *slog.Logger      // Optional
}

// StoreSwitcher rescopes the session to another store. A switch either fully
// applies (token persisted, session republished, display store cached) or
// leaves everything as it was.
type StoreSwitcher struct {
	session *SessionContext
	gateway ports.AuthGateway
	logger  *slog.Logger
}

// NewStoreSwitcher constructs a StoreSwitcher bound to session.
func NewStoreSwitcher(opts StoreSwitcherOptions) (*StoreSwitcher, error) {
	if opts.Session == nil {
		return nil, errors.New("SessionContext is required")
	}
	gw := opts.Gateway
	if gw == nil {
		gw = opts.Session.gateway
	}
	logger := opts.Logger
	if logger == nil {
		logger = opts.Session.logger
	}
	return &StoreSwitcher{
		session: opts.Session,
		gateway: gw,
		logger:  logger.With("component", "store_switcher"),
	}, nil
}

// CurrentStore returns the display object for the selected store.
func (w *StoreSwitcher) CurrentStore() (domainauth.Store, bool) {
	return w.session.CurrentStore()
}

// Switch requests a token scoped to target and adopts it. Selecting the store
// that is already current is a no-op and makes no network call. If the
// reissued token names a different store the switch fails with a
// store-mismatch error and nothing is persisted.
func (w *StoreSwitcher) Switch(ctx context.Context, target domainauth.Store) error {
	target.ID = strings.TrimSpace(target.ID)
	if target.ID == "" {
		return apperrors.ValidationField("store_id", "Please choose a store.")
	}
	if w.session.Snapshot().StoreID == target.ID {
		return nil
	}

	err := w.session.run(ctx, "switch", func(ctx context.Context) error {
		prev := w.session.Snapshot()
		if prev.StoreID == target.ID {
			return nil
		}

		out, err := w.gateway.RefreshAccess(ctx, target.ID)
		if err != nil {
			return err
		}
		tok, ok := domainauth.NormalizeToken(out.AccessToken)
		if !ok {
			return apperrors.API(0, "The server did not return an access token.")
		}
		bag, err := w.session.decode(ctx, tok)
		if err != nil {
			return err
		}
		if granted := bag.Get(domainauth.ClaimStoreID); granted != target.ID {
			w.logger.WarnContext(ctx, "reissued token scoped to unexpected store",
				"requested", target.ID, "granted", granted)
			return apperrors.StoreMismatch(target.ID, granted)
		}

		if err := w.session.commitDecoded(ctx, tok, bag, ChangeSwitch, &target); err != nil {
			return err
		}
		w.logger.InfoContext(ctx, "store switched", "from", prev.StoreID, "to", target.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("switch store: %w", err)
	}
	return nil
}
