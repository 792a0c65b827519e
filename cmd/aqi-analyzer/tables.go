package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/menta2k/aqi-analyzer/pkg/trend"
)

func newTrendCmd() *cobra.Command {
	var recentOnly bool

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Show the monthly AQI history and its summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			points := trend.Monthly()
			s := trend.Summarize(points, trend.CurrentMonth, trend.PreviousMonth)

			table := tablewriter.NewWriter(out)
			if recentOnly {
				table.SetHeader([]string{"Month", "AQI", "Direction"})
				for _, r := range s.Recent {
					table.Append([]string{r.Label, strconv.Itoa(r.AQI), string(r.Direction)})
				}
			} else {
				table.SetHeader([]string{"Month", "Average AQI", "Band"})
				for _, p := range points {
					table.Append([]string{p.Month, strconv.Itoa(p.AverageAQI), trend.BandFor(p.AverageAQI).Category})
				}
			}
			table.Render()

			fmt.Fprintf(out, "\nCurrent %s: %d (%s), %+d vs %s\n",
				s.Current.Month, s.Current.AverageAQI, s.Band.Category, s.Difference, s.Previous.Month)
			fmt.Fprintf(out, "Health impact: %s\n", s.HealthImpact)
			return nil
		},
	}

	cmd.Flags().BoolVar(&recentOnly, "recent", false, "show only the recent readings")
	return cmd
}

func newCatalogCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the AQI categories the estimator knows",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.cfg.BuildCatalog()
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Category", "Midpoint", "Recommendations"})
			table.SetRowLine(true)
			table.SetAutoWrapText(false)
			for _, e := range cat.Entries() {
				table.Append([]string{
					e.Name,
					strconv.FormatFloat(e.Midpoint, 'f', -1, 64),
					strings.Join(e.Recommendations, "\n"),
				})
			}
			table.Render()
			return nil
		},
	}
}
