package commands

import (
	"fmt"

	"git.home.luguber.info/inful/stylebuild/internal/config"
	"git.home.luguber.info/inful/stylebuild/internal/resolve"
)

// FilesCmd prints the resolved input file set without compiling anything.
type FilesCmd struct {
	Patterns []string `arg:"" optional:"" name:"pattern" help:"Input glob patterns, file paths, or directories."`
	Out      string   `short:"o" help:"Output artifact path (excluded from the input set)."`
}

func (f *FilesCmd) Run(_ *Global, root *CLI) error {
	cfg := config.Load(root.Config).Merge(config.Overrides{In: f.Patterns, Out: f.Out})

	fileSet, err := resolve.Resolve(cfg.In, cfg.Out)
	if err != nil {
		return err
	}

	for _, path := range fileSet.Inputs {
		fmt.Println(path)
	}
	fmt.Printf("%d file(s) -> %s\n", len(fileSet.Inputs), fileSet.Output)
	return nil
}
