package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Serve   ServeCmd         `cmd:"" help:"Run the wheel betting server"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("ironwheel"),
		kong.Description("Chat-driven betting rounds for a spinning-wheel stream game"),
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
