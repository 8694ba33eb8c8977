package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/covidflights/flightmatrix/isoweek"
)

var weekCmd = &cobra.Command{
	Use:   "week <YYYY-MM-DD|YYYY-WW>...",
	Short: "Show the ISO week of a date, or the dates of an ISO week",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		for _, arg := range args {
			w, err := parseWeekArg(arg)
			if err != nil {
				return err
			}
			fmt.Println(describeWeek(w))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(weekCmd)
}

func parseWeekArg(s string) (isoweek.Week, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return isoweek.Of(t), nil
	}
	w, err := isoweek.Parse(s)
	if err != nil {
		return isoweek.Week{}, fmt.Errorf("%q is neither a date (YYYY-MM-DD) nor an ISO week (YYYY-WW)", s)
	}
	return w, nil
}

func describeWeek(w isoweek.Week) string {
	start := w.Start()
	return fmt.Sprintf("%s  %s .. %s", w, start.Format("Mon 2006-01-02"), start.AddDate(0, 0, 6).Format("Mon 2006-01-02"))
}
