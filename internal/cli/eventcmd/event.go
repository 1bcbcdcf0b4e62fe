// Package eventcmd holds the `clubdesk event` subcommands.
package eventcmd

type EventCmd struct {
	List        ListCmd        `cmd:"" help:"List events." default:"withargs"`
	Add         AddCmd         `cmd:"" help:"Create an event, optionally repeated."`
	Edit        EditCmd        `cmd:"" help:"Edit one occurrence."`
	EditByTitle EditByTitleCmd `cmd:"" name:"edit-by-title" help:"Edit every upcoming occurrence with a title."`
	Delete      DeleteCmd      `cmd:"" help:"Delete an occurrence, every upcoming one with a title, or everything on a day."`
	Check       CheckCmd       `cmd:"" help:"Look for invalid and duplicate events."`
	Export      ExportCmd      `cmd:"" help:"Write events as an iCalendar file."`
}
