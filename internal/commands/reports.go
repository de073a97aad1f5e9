package commands

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abcbank/ledger/internal/analytics"
	"github.com/abcbank/ledger/internal/model"
	"github.com/abcbank/ledger/internal/records"
	"github.com/abcbank/ledger/internal/sin"
	"github.com/abcbank/ledger/internal/txlog"
)

func newTotalsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Show every client's total and average balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(opts)
			if err != nil {
				return err
			}
			defer e.close()

			out := cmd.OutOrStdout()
			averages := e.store.AverageBalances()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CLIENT\tSIN\tACCOUNTS\tTOTAL\tAVERAGE")
			for i, ct := range e.store.TotalBalances() {
				count, err := e.store.AccountCount(ct.Client)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
					ct.Client.Name, sin.Format(ct.Client.Number), count, money(ct.Total), money(averages[i]))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if e.store.Len() == 0 {
				fmt.Fprintln(out, "\nNo clients on record.")
				return nil
			}

			mu, err := analytics.Mean(averages)
			if err != nil {
				return err
			}
			sigma, err := analytics.StandardDeviation(averages)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nMean average balance: %s (std dev %s)\n", money(mu), money(sigma))
			return nil
		},
	}
}

func newRangesCommand(opts *rootOptions) *cobra.Command {
	var rawRanges []string

	cmd := &cobra.Command{
		Use:   "ranges",
		Short: "Group clients by total balance range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(opts)
			if err != nil {
				return err
			}
			defer e.close()

			ranges := e.cfg.Ranges
			if len(rawRanges) > 0 {
				ranges = ranges[:0:0]
				for _, raw := range rawRanges {
					r, err := model.ParseFinancialRange(raw)
					if err != nil {
						return err
					}
					ranges = append(ranges, r)
				}
			}
			if len(ranges) == 0 {
				return fmt.Errorf("no ranges given: pass --range or set ranges in the config file")
			}

			buckets := e.store.TotalsByRange(ranges)
			keys := make([]model.FinancialRange, 0, len(buckets))
			for r := range buckets {
				keys = append(keys, r)
			}
			slices.SortFunc(keys, compareRanges)

			out := cmd.OutOrStdout()
			if len(keys) == 0 {
				fmt.Fprintln(out, "No clients fall within the given ranges.")
				return nil
			}
			for _, r := range keys {
				headingColor.Fprintln(out, r.String())
				for _, c := range buckets[r] {
					fmt.Fprintf(out, "  %s (%s)\n", c.Name, sin.Format(c.Number))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&rawRanges, "range", nil, "balance range as low:high (repeatable)")
	return cmd
}

func compareRanges(a, b model.FinancialRange) int {
	switch {
	case a.Low < b.Low:
		return -1
	case a.Low > b.Low:
		return 1
	case a.High < b.High:
		return -1
	case a.High > b.High:
		return 1
	}
	return 0
}

func newProjectCommand(opts *rootOptions) *cobra.Command {
	var (
		name  string
		rawSN string
		years int
	)

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project a client's balances forward",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(opts)
			if err != nil {
				return err
			}
			defer e.close()

			number, err := sin.Parse(rawSN)
			if err != nil {
				return err
			}
			client := model.NewClientIdentity(name, number)

			projected, err := e.engine.ProjectedValue(client, years)
			if err != nil {
				return err
			}
			secure, err := e.engine.IsFutureSecure(client, years)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Projected value after %d year(s): %s\n", years, money(projected))
			if secure {
				okColor.Fprintln(out, "Future secure: yes")
			} else {
				failColor.Fprintln(out, "Future secure: no")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "client name as <Firstname> <Lastname>")
	cmd.Flags().StringVar(&rawSN, "sin", "", "client SIN as ### ### ###")
	cmd.Flags().IntVar(&years, "years", 5, "projection horizon in years")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("sin")
	return cmd
}

func newCheckCommand(opts *rootOptions) *cobra.Command {
	var canonical bool

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Validate a client data file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.dataFile = args[0]
			}
			e, err := loadEnv(opts)
			if err != nil {
				return err
			}
			defer e.close()

			out := cmd.OutOrStdout()
			if canonical {
				return records.WriteRecords(out, e.store.Records())
			}

			accounts := 0
			for _, rec := range e.store.Records() {
				accounts += rec.Accounts.Len()
			}
			okColor.Fprintf(out, "%s: %d clients, %d accounts\n", e.cfg.DataFile, e.store.Len(), accounts)
			return nil
		},
	}

	cmd.Flags().BoolVar(&canonical, "print", false, "write the data back out in canonical form")
	return cmd
}

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var (
		client string
		rawSN  string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the transaction log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(opts)
			if err != nil {
				return err
			}
			defer e.close()

			masked := ""
			if rawSN != "" {
				number, err := sin.Parse(rawSN)
				if err != nil {
					return err
				}
				masked = sin.Mask(number)
			}

			path := e.cfg.Log.TransactionLog
			if path == "" {
				return fmt.Errorf("transaction log is disabled in the config file")
			}
			entries, err := txlog.Read(path)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transactions recorded.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tCLIENT\tSIN\tACTION\tACCOUNT\tAMOUNT\tDETAILS")
			for _, en := range entries {
				if client != "" && en.Client != client {
					continue
				}
				if masked != "" && en.SIN != masked {
					continue
				}
				account := "-"
				if en.Account >= 0 {
					account = fmt.Sprint(en.Account)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					en.Timestamp.Format("2006-01-02 15:04:05"), en.Client, en.SIN, en.Action, account,
					en.Amount.StringFixed(2), en.Details)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&client, "client", "", "only show entries for this client name")
	cmd.Flags().StringVar(&rawSN, "sin", "", "only show entries for this SIN (compared by its last three digits)")
	return cmd
}
