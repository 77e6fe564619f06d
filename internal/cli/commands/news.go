package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gametu-dev/gametu/internal/services"
)

// NewNewsCmd creates the news command group
func NewNewsCmd(opts ...Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "news",
		Short: "Read and publish news",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List news",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newOptions(opts).run(cmd, runNewsList)
		},
	})

	var in services.NewsInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Publish a news item (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newOptions(opts).run(cmd, func(ctx context.Context, c *client) error {
				return runNewsCreate(ctx, c, in)
			})
		},
	}
	create.Flags().StringVar(&in.Titular, "headline", "", "Headline")
	create.Flags().StringVar(&in.Cuerpo, "body", "", "Body text")
	cmd.AddCommand(create)

	return cmd
}

func runNewsList(ctx context.Context, c *client) error {
	user, err := c.requireLogin()
	if err != nil {
		return err
	}

	news, err := c.svc.News.List(ctx, user.ID)
	if err != nil {
		return err
	}

	if len(news) == 0 {
		fmt.Fprintln(c.out, "No news yet.")
		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tHEADLINE\tBODY")
	fmt.Fprintln(w, "──\t────────\t────")
	for _, item := range news {
		fmt.Fprintf(w, "%d\t%s\t%s\n", item.ID, item.Titular, item.Cuerpo)
	}
	return w.Flush()
}

func runNewsCreate(ctx context.Context, c *client, in services.NewsInput) error {
	admin, err := c.requireAdmin()
	if err != nil {
		return err
	}
	in.UserID = admin.ID

	item, err := c.svc.News.Create(ctx, in)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "✓ Published news %d (%s)\n", item.ID, item.Titular)
	return nil
}
