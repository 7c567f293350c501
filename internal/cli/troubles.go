package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cocreate/pkg/frontend"
	"cocreate/pkg/models"
)

func (c *cli) troublesCmd() *cobra.Command {
	var category, status string
	cmd := &cobra.Command{
		Use:   "troubles",
		Short: "List the selected project's troubles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if status != "" && !models.ValidTroubleStatus(status) {
				return fmt.Errorf("unknown status %q (want one of %s)", status, strings.Join(models.TroubleStatuses, ", "))
			}
			l := frontend.NewTroubleList(c.deps)
			if err := l.Load(cmd.Context()); err != nil {
				return err
			}
			c.printf("%s", c.render.TroubleList(l.Project.Title, l.Filter(category, status)))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only show this category")
	cmd.Flags().StringVar(&status, "status", "", "only show this status")
	cmd.AddCommand(c.troubleSelectCmd(), c.troubleCreateCmd(), c.troubleStatusCmd())
	return cmd
}

func (c *cli) troubleSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>",
		Short: "Open a trouble's conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			l := frontend.NewTroubleList(c.deps)
			if err := l.Load(cmd.Context()); err != nil {
				return err
			}
			it, ok := l.Find(id)
			if !ok {
				return fmt.Errorf("trouble %d is not in project %q", id, l.Project.Title)
			}
			return l.Select(it)
		},
	}
}

func (c *cli) troubleCreateCmd() *cobra.Command {
	var in models.NewTrouble
	var category string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Raise a trouble in the selected project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l := frontend.NewTroubleList(c.deps)
			if err := l.Load(cmd.Context()); err != nil {
				return err
			}
			id, err := resolveCategory(l.Categories, category)
			if err != nil {
				return err
			}
			in.CategoryID = id
			it, err := l.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			c.printf("%s\n", c.render.TroubleRow(it))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&category, "category", "", "category id or name")
	f.StringVar(&in.Description, "description", "", "what is blocking you")
	f.StringVar(&in.Status, "status", "", "initial status (default unresolved)")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func (c *cli) troubleStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "status <id> <status>",
		Short:     "Change a trouble's status",
		Args:      cobra.ExactArgs(2),
		ValidArgs: models.TroubleStatuses,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			l := frontend.NewTroubleList(c.deps)
			it, err := l.UpdateStatus(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			c.printf("%s\n", c.render.TroubleRow(it))
			return nil
		},
	}
}

func (c *cli) participantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "participants",
		Short: "List the people involved in the selected trouble",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ps, err := frontend.NewTroubleList(c.deps).Participants(cmd.Context())
			if err != nil {
				return err
			}
			c.printf("%s", c.render.Participants(ps))
			return nil
		},
	}
}
