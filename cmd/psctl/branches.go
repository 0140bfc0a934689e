package main

import (
	"github.com/spf13/cobra"

	"github.com/pitabwire/pscale/client"
)

func (a *app) branchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "branches",
		Aliases: []string{"branch"},
		Short:   "Work with database branches",
	}

	var (
		f          listFlags
		production bool
	)
	list := &cobra.Command{
		Use:   "list <database>",
		Short: "List branches of a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := client.ListBranchesInput{
				Database:   args[0],
				Production: production,
				PageParams: a.pageParams(f),
			}
			return printList(a, a.client.AllBranches(cmd.Context(), in), f.limit, []column[client.Branch]{
				{"NAME", func(b client.Branch) string { return b.Name }},
				{"PARENT", func(b client.Branch) string { return b.ParentBranch }},
				{"PRODUCTION", func(b client.Branch) string { return yesNo(b.Production) }},
				{"READY", func(b client.Branch) string { return yesNo(b.Ready) }},
				{"CREATED", func(b client.Branch) string { return formatTime(b.CreatedAt) }},
			})
		},
	}
	addListFlags(list, &f)
	list.Flags().BoolVar(&production, "production", false, "only production branches")
	cmd.AddCommand(list)
	return cmd
}
