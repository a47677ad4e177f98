package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ignite/issue-tracker/internal/domain"
	"github.com/ignite/issue-tracker/internal/pkg/output"
)

func newCreateCmd(a *app) *cobra.Command {
	var req domain.CreateIssueRequest
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an issue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			iss, err := a.client().Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			if a.cfg.GetBool("json") {
				return a.printJSON(iss)
			}
			a.ui.Success("Created issue %s", iss.ID)
			a.printIssue(iss)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Title, "title", "", "Issue title (required)")
	cmd.Flags().StringVar(&req.Description, "desc", "", "Issue description (required)")
	cmd.Flags().StringVar(&req.Priority, "priority", string(domain.PriorityMedium), "Priority: Low, Medium, High")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("desc")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <issue-id>",
		Short: "Show an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			iss, err := a.client().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.cfg.GetBool("json") {
				return a.printJSON(iss)
			}
			a.printIssue(iss)
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List issues",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			issues, err := a.client().List(cmd.Context(), domain.Status(status))
			if err != nil {
				return err
			}
			if a.cfg.GetBool("json") {
				return a.printJSON(issues)
			}
			if len(issues) == 0 {
				fmt.Fprintln(a.ui.Out, "No issues found.")
				return nil
			}

			table := a.ui.Table([]string{"ID", "Title", "Status", "Priority", "Created"})
			for _, iss := range issues {
				_ = table.Append([]string{
					iss.ID,
					truncate(iss.Title, 48),
					output.StatusColor(string(iss.Status)),
					output.PriorityColor(string(iss.Priority)),
					iss.CreatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			return table.Render()
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by status: Open, InProgress, Done")
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var title, desc, status, priority string
	cmd := &cobra.Command{
		Use:   "update <issue-id>",
		Short: "Update an issue",
		Long:  "Update an issue. Only the flags you pass are changed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req domain.UpdateIssueRequest
			flags := cmd.Flags()
			if flags.Changed("title") {
				req.Title = &title
			}
			if flags.Changed("desc") {
				req.Description = &desc
			}
			if flags.Changed("status") {
				req.Status = &status
			}
			if flags.Changed("priority") {
				req.Priority = &priority
			}
			if req.IsEmpty() {
				return fmt.Errorf("nothing to update: pass at least one of --title, --desc, --status, --priority")
			}

			iss, err := a.client().Update(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			if a.cfg.GetBool("json") {
				return a.printJSON(iss)
			}
			a.ui.Success("Updated issue %s", iss.ID)
			a.printIssue(iss)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&desc, "desc", "", "New description")
	cmd.Flags().StringVar(&status, "status", "", "New status: Open, InProgress, Done")
	cmd.Flags().StringVar(&priority, "priority", "", "New priority: Low, Medium, High")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <issue-id>",
		Aliases: []string{"rm"},
		Short:   "Delete an issue",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.ui.Success("Deleted issue %s", args[0])
			return nil
		},
	}
}

func (a *app) printIssue(iss *domain.Issue) {
	a.ui.Field("ID", iss.ID)
	a.ui.Field("Title", iss.Title)
	a.ui.Field("Status", output.StatusColor(string(iss.Status)))
	a.ui.Field("Priority", output.PriorityColor(string(iss.Priority)))
	a.ui.Field("Created", iss.CreatedAt.Format(time.RFC3339))
	a.ui.Field("Updated", iss.UpdatedAt.Format(time.RFC3339))
	if iss.Description != "" {
		fmt.Fprintf(a.ui.Out, "\n%s\n", iss.Description)
	}
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.ui.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
