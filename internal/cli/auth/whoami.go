package auth

import (
	"github.com/julianstephens/clubdesk/internal/cli"
)

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.RequireLogin()
	if err != nil {
		return err
	}
	ctx.Printf("User:      %s\n", sess.Username)
	if sess.Role != "" {
		ctx.Printf("Role:      %s\n", sess.Role)
	}
	if !sess.LoggedInAt.IsZero() {
		ctx.Printf("Signed in: %s\n", sess.LoggedInAt.In(ctx.Location).Format("2006-01-02 15:04"))
	}
	return nil
}
