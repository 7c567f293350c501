package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cocreate/pkg/frontend"
	"cocreate/pkg/models"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// resolveCategory accepts a category id or a case-insensitive name.
func resolveCategory(cats []models.Category, v string) (int64, error) {
	if id, err := strconv.ParseInt(v, 10, 64); err == nil {
		return id, nil
	}
	for _, cat := range cats {
		if strings.EqualFold(cat.Name, v) {
			return cat.ID, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", v)
}

func (c *cli) projectsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:       "projects [new|favorite]",
		Short:     "Show the project board",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"new", "favorite"},
		RunE: func(cmd *cobra.Command, args []string) error {
			b := frontend.NewBoard(c.deps)
			if err := b.Load(cmd.Context(), limit); err != nil {
				return err
			}
			which := ""
			if len(args) == 1 {
				which = args[0]
			}
			if which == "" || which == "new" {
				c.printf("%s\n", c.render.ProjectList("New projects", b.New, "No new projects."))
			}
			if which == "" || which == "favorite" {
				c.printf("%s\n", c.render.ProjectList("Favorites", b.Favorites, "No favorites yet."))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum projects per list (server default when 0)")
	cmd.AddCommand(c.projectShowCmd(), c.projectSelectCmd(), c.projectFavoriteCmd(), c.projectCreateCmd(), c.projectMineCmd())
	return cmd
}

func (c *cli) projectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := frontend.NewBoard(c.deps).Project(cmd.Context(), id)
			if err != nil {
				return err
			}
			c.printf("%s\n", c.render.ProjectCard(p))
			if p.Description != "" && p.Description != p.Summary {
				c.printf("\n%s\n", p.Description)
			}
			return nil
		},
	}
}

func (c *cli) projectSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>",
		Short: "Open a project's trouble list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			b := frontend.NewBoard(c.deps)
			p, err := c.findProject(cmd.Context(), b, id)
			if err != nil {
				return err
			}
			return b.Select(p)
		},
	}
}

// findProject looks id up on the board, then asks the API.
func (c *cli) findProject(ctx context.Context, b *frontend.Board, id int64) (models.Project, error) {
	if c.deps.Policy.Offline {
		if err := b.Load(ctx, 0); err != nil {
			return models.Project{}, err
		}
		for _, list := range [][]models.Project{b.Favorites, b.New} {
			for _, p := range list {
				if p.ID == id {
					return p, nil
				}
			}
		}
		return models.Project{}, fmt.Errorf("project %d not found", id)
	}
	return b.Project(ctx, id)
}

func (c *cli) projectFavoriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <id>",
		Short: "Toggle a project's favorite flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			b := frontend.NewBoard(c.deps)
			if err := b.Load(cmd.Context(), 0); err != nil {
				return err
			}
			_, err = b.ToggleFavorite(cmd.Context(), id)
			return err
		},
	}
}

func (c *cli) projectCreateCmd() *cobra.Command {
	var in models.NewProject
	var category string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := frontend.NewBoard(c.deps)
			cats, err := b.Categories(cmd.Context())
			if err != nil {
				return err
			}
			if in.CategoryID, err = resolveCategory(cats, category); err != nil {
				return err
			}
			p, err := b.CreateProject(cmd.Context(), in)
			if err != nil {
				return err
			}
			c.printf("%s\n", c.render.ProjectCard(p))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "project title")
	f.StringVar(&in.Summary, "summary", "", "one-line summary")
	f.StringVar(&in.Description, "description", "", "longer description")
	f.StringVar(&category, "category", "Other", "category id or name")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func (c *cli) projectMineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List projects you own",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ps, err := frontend.NewBoard(c.deps).Mine(cmd.Context())
			if err != nil {
				return err
			}
			c.printf("%s\n", c.render.ProjectList("My projects", ps, "You have no projects yet."))
			return nil
		},
	}
}
