package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/clubdesk/internal/cli"
	"github.com/julianstephens/clubdesk/internal/cli/auth"
	"github.com/julianstephens/clubdesk/internal/cli/eventcmd"
	"github.com/julianstephens/clubdesk/internal/cli/system"
	"github.com/julianstephens/clubdesk/internal/config"
	"github.com/julianstephens/clubdesk/internal/constants"
	apperrors "github.com/julianstephens/clubdesk/internal/errors"
	"github.com/julianstephens/clubdesk/internal/logger"
	"github.com/julianstephens/clubdesk/internal/session"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Config file path." type:"path" default:"${config_path}" env:"CLUBDESK_CONFIG"`
	Debug    bool   `help:"Log debug output to stderr." env:"CLUBDESK_DEBUG"`
	LogLevel string `help:"Lowest level written to the log file." default:"info" enum:"debug,info,warn,error" env:"CLUBDESK_LOG_LEVEL"`

	Init    system.InitCmd    `cmd:"" help:"Write the configuration and initialize the event cache."`
	Migrate system.MigrateCmd `cmd:"" help:"Run event cache migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Sync    system.SyncCmd    `cmd:"" help:"Copy the event list into the local cache."`
	Login   auth.LoginCmd     `cmd:"" help:"Sign in to the club website."`
	Logout  auth.LogoutCmd    `cmd:"" help:"Sign out."`
	Whoami  auth.WhoamiCmd    `cmd:"" help:"Show the signed-in user."`
	Event   eventcmd.EventCmd `cmd:"" help:"Manage events."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the cache connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored cache connection string."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored cache connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Show what is stored in the OS keyring." default:"1"`
	} `cmd:"" help:"Manage secrets kept in the OS keyring."`
}

func main() {
	defaultConfig, err := config.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Event administration for the club website"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": defaultConfig,
		},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}

	appCtx, err := cli.NewContext(cfg, CLI.Config, session.New())
	if err != nil {
		apperrors.Fatal(err)
	}

	if err := logger.Init(logger.Config{Debug: CLI.Debug, Level: CLI.LogLevel, ConfigDir: appCtx.ConfigDir()}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}
	logger.ForCommand(kctx.Command())

	if err := appCtx.Session.Load(); err != nil {
		logger.Warn("Failed to restore session", "error", err)
	}

	err = kctx.Run(appCtx)
	appCtx.Close()
	if err != nil {
		apperrors.Fatal(err)
	}
}
