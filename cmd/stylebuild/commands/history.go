package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/stylebuild/internal/config"
	"git.home.luguber.info/inful/stylebuild/internal/history"
)

// HistoryCmd lists recent compiles from the SQLite history store.
type HistoryCmd struct {
	Limit int `short:"n" default:"20" help:"Maximum number of records to show."`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg := config.Load(root.Config)
	path := cfg.History.Path
	if path == "" {
		path = defaultHistoryPath
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Recent(context.Background(), h.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no compiles recorded")
		return nil
	}

	for _, r := range records {
		line := fmt.Sprintf("%s  %-7s %-9s %4d file(s) %6dms  %s",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.Status, r.Trigger, r.Files, r.DurationMS, r.Output)
		if r.Changed != "" {
			line += "  (" + r.Changed + ")"
		}
		if r.Error != "" {
			line += "  " + r.Error
		}
		fmt.Println(line)
	}
	return nil
}
