// Package cmd - resolve command
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/workplan"
)

var (
	resolveCadence    string
	resolveSelector   string
	resolveWeekday    string
	resolveMonthDay   int
	resolveStartMonth int
	resolveDate       string
	resolveFrom       string
	resolveTo         string
)

// resolveCmd resolves a recurrence descriptor into concrete periods.
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a recurrence into a billing period",
	Long: `Resolve a recurrence descriptor and reference date into a concrete
billing period, or enumerate all periods over a range with --from/--to.

Examples:
  billctl resolve --cadence monthly --month-day 15 --date 2024-03-20
  billctl resolve --cadence quarterly --start-month 1 --date 2024-07-10 --selector previous_period
  billctl resolve --cadence weekly --week-start monday --from 2024-01-01 --to 2024-02-01`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVarP(&resolveCadence, "cadence", "c", "", "daily, weekly, monthly, quarterly, half_yearly or yearly")
	resolveCmd.Flags().StringVarP(&resolveSelector, "selector", "s", "", "previous_period, current_period or next_period")
	resolveCmd.Flags().StringVar(&resolveWeekday, "week-start", "", "start-of-week day for weekly cadence")
	resolveCmd.Flags().IntVar(&resolveMonthDay, "month-day", 0, "anchor day-of-month for monthly cadence")
	resolveCmd.Flags().IntVar(&resolveStartMonth, "start-month", 0, "anchor month for quarterly/half-yearly/yearly cadence")
	resolveCmd.Flags().StringVarP(&resolveDate, "date", "d", "", "reference date (default today)")
	resolveCmd.Flags().StringVar(&resolveFrom, "from", "", "range start for occurrence enumeration")
	resolveCmd.Flags().StringVar(&resolveTo, "to", "", "range end for occurrence enumeration")
	_ = resolveCmd.MarkFlagRequired("cadence")
}

func runResolve(cmd *cobra.Command, args []string) error {
	descriptor, err := billing.Parse(billing.Raw{
		Cadence:     resolveCadence,
		Selector:    resolveSelector,
		Weekday:     resolveWeekday,
		AnchorDay:   resolveMonthDay,
		AnchorMonth: resolveStartMonth,
	})
	if err != nil {
		return err
	}

	if resolveFrom != "" || resolveTo != "" {
		from, err := billing.ParseDate(resolveFrom)
		if err != nil {
			return err
		}
		to, err := billing.ParseDate(resolveTo)
		if err != nil {
			return err
		}
		periods, err := workplan.Occurrences(descriptor, from, to)
		if err != nil {
			return err
		}
		for _, p := range periods {
			fmt.Printf("%s  (%d days)\n", p, p.Days())
		}
		return nil
	}

	ref := billing.DateOf(time.Now())
	if resolveDate != "" {
		ref, err = billing.ParseDate(resolveDate)
		if err != nil {
			return err
		}
	}

	period, err := billing.Resolve(descriptor, ref)
	if err != nil {
		return err
	}
	fmt.Printf("%s  (%d days)\n", period, period.Days())
	return nil
}
