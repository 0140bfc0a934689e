package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pitabwire/pscale/client"
	"github.com/pitabwire/pscale/model"
)

func (a *app) databasesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "databases",
		Aliases: []string{"database", "db"},
		Short:   "Work with databases",
	}

	var f listFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List databases in the organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := client.ListDatabasesInput{PageParams: a.pageParams(f)}
			return printList(a, a.client.AllDatabases(cmd.Context(), in), f.limit, []column[client.Database]{
				{"NAME", func(d client.Database) string { return d.Name }},
				{"STATE", func(d client.Database) string { return d.State }},
				{"REGION", func(d client.Database) string { return d.Region.Slug }},
				{"BRANCHES", func(d client.Database) string { return strconv.Itoa(d.BranchesCount) }},
				{"CREATED", func(d client.Database) string { return formatTime(d.CreatedAt) }},
			})
		},
	}
	addListFlags(list, &f)
	cmd.AddCommand(list)
	return cmd
}

func addListFlags(cmd *cobra.Command, f *listFlags) {
	cmd.Flags().IntVar(&f.perPage, "per-page", 0, "page size requested from the API (default: pagination.per_page)")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "stop after this many results (default: all)")
}

func (a *app) pageParams(f listFlags) model.PageParams {
	perPage := f.perPage
	if perPage == 0 {
		perPage = a.cfg.Pagination.PerPage
	}
	return model.PageParams{PerPage: perPage}
}
