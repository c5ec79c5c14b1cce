package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version    kong.VersionFlag `short:"v" help:"Show version"`
	Arena      ArenaCmd         `cmd:"" help:"Play a local match between two configured agents"`
	Play       PlayCmd          `cmd:"" help:"Play against an agent in the terminal"`
	Serve      ServeCmd         `cmd:"" help:"Host a match for remote bots"`
	Bot        BotCmd           `cmd:"" help:"Connect a configured agent to a server"`
	Report     ReportCmd        `cmd:"" help:"Render HTML reports from results and checkpoints"`
	Checkpoint CheckpointCmd    `cmd:"" help:"Work with network checkpoint files"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("boardforbots"),
		kong.Description("Monte-Carlo game agents for two-player board games"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
