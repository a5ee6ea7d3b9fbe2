package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"polyroots/internal/pipeline"
)

// listCmd prints the run catalog.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List computed runs from the catalog",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	p, err := pipeline.New(cfg.DataDir, cfg.Compute.Workers, nil)
	if err != nil {
		return err
	}
	defer p.Close()

	recs, err := p.Catalog().List()
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		cmd.Println("no computed runs")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DEGREE\tROOTS\tFAILURES\tCOMPLETE\tFINISHED\tPATH")
	for _, rec := range recs {
		complete := "yes"
		if !rec.Complete {
			complete = "NO"
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%s\t%s\n",
			rec.Degree, rec.Roots, rec.Failures, complete,
			rec.FinishedAt.Local().Format(time.DateTime), rec.Path)
	}
	return w.Flush()
}
