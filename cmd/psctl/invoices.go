package main

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pitabwire/pscale/client"
)

func (a *app) invoicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "invoices",
		Aliases: []string{"invoice"},
		Short:   "Work with invoices",
	}

	var f listFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List invoices of the organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := client.ListInvoicesInput{PageParams: a.pageParams(f)}
			return printList(a, a.client.AllInvoices(cmd.Context(), in), f.limit, []column[client.Invoice]{
				{"ID", func(i client.Invoice) string { return i.ID }},
				{"PERIOD", func(i client.Invoice) string {
					return formatDate(i.BillingPeriodStart) + " - " + formatDate(i.BillingPeriodEnd)
				}},
				{"TOTAL", func(i client.Invoice) string {
					return strconv.FormatFloat(i.Total, 'f', 2, 64) + " " + i.Currency
				}},
				{"STATUS", func(i client.Invoice) string { return i.Status }},
			})
		},
	}
	addListFlags(list, &f)
	cmd.AddCommand(list)
	return cmd
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.DateOnly)
}
