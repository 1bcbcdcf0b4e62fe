package auth

import (
	"errors"

	"github.com/julianstephens/clubdesk/internal/cli"
	"github.com/julianstephens/clubdesk/internal/logger"
	"github.com/julianstephens/clubdesk/internal/session"
)

type LogoutCmd struct{}

// Run drops the local session even when the backend cannot be told.
func (c *LogoutCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.Session.Current(); errors.Is(err, session.ErrNotLoggedIn) {
		ctx.Println("Not signed in")
		return nil
	}

	reqCtx, cancel := ctx.RequestContext()
	defer cancel()
	if err := ctx.Client.Logout(reqCtx); err != nil {
		logger.Warn("Server logout failed", "error", err)
	}

	if err := ctx.Session.Clear(); err != nil {
		return err
	}
	ctx.Println("✓ Signed out")
	return nil
}
