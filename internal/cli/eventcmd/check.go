package eventcmd

import (
	"fmt"

	"github.com/julianstephens/clubdesk/internal/cli"
	"github.com/julianstephens/clubdesk/internal/models"
	"github.com/julianstephens/clubdesk/internal/validation"
)

type CheckCmd struct {
	Fix     bool `help:"Delete duplicate events, keeping the first of each group."`
	Offline bool `help:"Check the local cache instead of the API."`
}

func (c *CheckCmd) Run(ctx *cli.Context) error {
	if c.Fix && c.Offline {
		return fmt.Errorf("--fix needs the API and cannot be combined with --offline")
	}
	if !c.Offline {
		if err := ctx.Config.Validate(); err != nil {
			return err
		}
	}

	reqCtx, cancel := ctx.RequestContext()
	defer cancel()

	list, _, err := ctx.FetchEvents(reqCtx, c.Offline)
	if err != nil {
		return err
	}

	result := ctx.Validator.CheckEvents(list)
	fmt.Fprint(ctx.Stdout(), result.FormatReport())
	if !result.HasConflicts() {
		ctx.Println()
		return nil
	}
	if !c.Fix {
		return nil
	}

	if _, err := ctx.RequireLogin(); err != nil {
		return err
	}
	actions := validation.AutoFixDuplicates(result.Conflicts, func(id string) error {
		_, err := ctx.Client.Delete(reqCtx, models.DeleteRequest{ID: id})
		return err
	})
	if len(actions) == 0 {
		ctx.Println("Nothing to fix automatically.")
		return nil
	}
	ctx.Println("\nAuto-fix:")
	for _, a := range actions {
		ctx.Printf("- %s\n", a.Action)
	}
	return nil
}
