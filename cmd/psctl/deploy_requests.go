package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pitabwire/pscale/client"
)

func (a *app) deployRequestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deploy-requests",
		Aliases: []string{"deploy-request", "dr"},
		Short:   "Work with deploy requests",
	}

	var (
		f      listFlags
		state  string
		branch string
	)
	list := &cobra.Command{
		Use:   "list <database>",
		Short: "List deploy requests of a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := client.ListDeployRequestsInput{
				Database:   args[0],
				State:      state,
				Branch:     branch,
				PageParams: a.pageParams(f),
			}
			return printList(a, a.client.AllDeployRequests(cmd.Context(), in), f.limit, []column[client.DeployRequest]{
				{"NUMBER", func(d client.DeployRequest) string { return strconv.Itoa(d.Number) }},
				{"BRANCH", func(d client.DeployRequest) string { return d.Branch }},
				{"INTO", func(d client.DeployRequest) string { return d.IntoBranch }},
				{"STATE", func(d client.DeployRequest) string { return d.State }},
				{"DEPLOYMENT", func(d client.DeployRequest) string { return d.DeploymentState }},
				{"APPROVED", func(d client.DeployRequest) string { return yesNo(d.Approved) }},
			})
		},
	}
	addListFlags(list, &f)
	list.Flags().StringVar(&state, "state", "", "filter by state (open, closed)")
	list.Flags().StringVar(&branch, "branch", "", "filter by source branch")
	cmd.AddCommand(list)
	return cmd
}
