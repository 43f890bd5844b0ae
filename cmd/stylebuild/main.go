package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/stylebuild/cmd/stylebuild/commands"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("stylebuild"),
		kong.Description("Compile stylesheet bundles into a single artifact, optionally watching for changes."),
		kong.UsageOnError(),
		kong.Vars{"version": Version},
	)

	err := parser.Run(&commands.Global{}, cli)
	parser.FatalIfErrorf(err)
}
