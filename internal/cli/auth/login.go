package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/clubdesk/internal/cli"
	"github.com/julianstephens/clubdesk/internal/constants"
)

type LoginCmd struct {
	Username string `short:"u" help:"Account name. Prompted for when omitted."`
	Password string `help:"Password. Prompted for when omitted; prefer the prompt or CLUBDESK_PASSWORD." env:"CLUBDESK_PASSWORD"`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	if err := ctx.Config.Validate(); err != nil {
		return err
	}
	if c.Username == "" || c.Password == "" {
		if err := c.prompt(); err != nil {
			return err
		}
	}
	c.Username = strings.TrimSpace(c.Username)
	if c.Username == "" || c.Password == "" {
		return errors.New("username and password are required")
	}

	reqCtx, cancel := ctx.RequestContext()
	defer cancel()

	sess, err := ctx.Client.Login(reqCtx, c.Username, c.Password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if err := ctx.Session.Save(sess); err != nil {
		return err
	}
	if sess.Role != "" {
		ctx.Printf("✓ Signed in as %s (%s)\n", sess.Username, sess.Role)
	} else {
		ctx.Printf("✓ Signed in as %s\n", sess.Username)
	}
	return nil
}

func (c *LoginCmd) prompt() error {
	if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		return errors.New("no terminal to prompt on, pass --username and set CLUBDESK_PASSWORD")
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Sign in to %s", constants.AppName)).
				Placeholder("username").
				Value(&c.Username).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("username is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&c.Password),
		),
	).WithTheme(huh.ThemeDracula())
	return form.Run()
}
