package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewCategoriesCmd creates the categories command group
func NewCategoriesCmd(opts ...Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "Manage offer categories",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:     "ls",
			Aliases: []string{"list"},
			Short:   "List categories",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return newOptions(opts).run(cmd, runCategoriesList)
			},
		},
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create a category (admin)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return newOptions(opts).run(cmd, func(ctx context.Context, c *client) error {
					if _, err := c.requireAdmin(); err != nil {
						return err
					}
					category, err := c.svc.Categories.Create(ctx, args[0])
					if err != nil {
						return err
					}
					fmt.Fprintf(c.out, "✓ Created category %d (%s)\n", category.ID, category.Name)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "update <id> <name>",
			Short: "Rename a category (admin)",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return newOptions(opts).run(cmd, func(ctx context.Context, c *client) error {
					if _, err := c.requireAdmin(); err != nil {
						return err
					}
					category, err := c.svc.Categories.Update(ctx, id, args[1])
					if err != nil {
						return err
					}
					fmt.Fprintf(c.out, "✓ Renamed category %d to %s\n", category.ID, category.Name)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a category (admin)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return newOptions(opts).run(cmd, func(ctx context.Context, c *client) error {
					if _, err := c.requireAdmin(); err != nil {
						return err
					}
					if err := c.svc.Categories.Delete(ctx, id); err != nil {
						return err
					}
					fmt.Fprintf(c.out, "✓ Deleted category %d\n", id)
					return nil
				})
			},
		},
	)

	return cmd
}

func runCategoriesList(ctx context.Context, c *client) error {
	if _, err := c.requireLogin(); err != nil {
		return err
	}

	categories, err := c.svc.Categories.List(ctx)
	if err != nil {
		return err
	}

	if len(categories) == 0 {
		fmt.Fprintln(c.out, "No categories yet.")
		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	fmt.Fprintln(w, "──\t────")
	for _, category := range categories {
		fmt.Fprintf(w, "%d\t%s\n", category.ID, category.Name)
	}
	return w.Flush()
}
