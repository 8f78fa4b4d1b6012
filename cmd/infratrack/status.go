package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vbonduro/infratrack/internal/db"
	"github.com/vbonduro/infratrack/internal/domain"
	"github.com/vbonduro/infratrack/internal/service"
	"github.com/vbonduro/infratrack/internal/store"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print per-pavilion counts",
		Long: `Load the current state once and print, for each pavilion, how many
locations and items it holds and how many items are in bad condition.`,
		Args: cobra.NoArgs,
		RunE: withDatabase(runStatus),
	}
}

func runStatus(cmd *cobra.Command, d *db.DB) error {
	svc := service.NewInfrastructureService(store.NewLocationStore(d, nil), store.NewItemStore(d, nil), nil, nil)
	loadErr := svc.Refresh(cmd.Context())
	st := svc.State()

	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PAVILION\tLOCATIONS\tITEMS\tBAD")
	for _, p := range st.Pavilions {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", p.ID, len(p.Locations), len(p.Items), p.CountStatus(domain.StatusBad))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if st.Error != "" {
		fmt.Fprintf(out, "\nerror: %s\n", st.Error)
	}
	return loadErr
}
