package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gametu-dev/gametu/internal/services"
)

// NewComplaintsCmd creates the complaints command group
func NewComplaintsCmd(opts ...Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "complaints",
		Aliases: []string{"complaint"},
		Short:   "File and review complaints",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List complaints",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newOptions(opts).run(cmd, runComplaintsList)
		},
	})

	var in services.ComplaintInput
	create := &cobra.Command{
		Use:   "create",
		Short: "File a complaint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newOptions(opts).run(cmd, func(ctx context.Context, c *client) error {
				return runComplaintsCreate(ctx, c, in)
			})
		},
	}
	create.Flags().StringVar(&in.Titulo, "title", "", "Short summary")
	create.Flags().StringVar(&in.Descripcion, "description", "", "What went wrong")
	cmd.AddCommand(create)

	return cmd
}

func runComplaintsList(ctx context.Context, c *client) error {
	user, err := c.requireLogin()
	if err != nil {
		return err
	}

	complaints, err := c.svc.Complaints.List(ctx, user.ID)
	if err != nil {
		return err
	}

	if len(complaints) == 0 {
		fmt.Fprintln(c.out, "No complaints found.")
		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDESCRIPTION\tUSER")
	fmt.Fprintln(w, "──\t─────\t───────────\t────")
	for _, complaint := range complaints {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", complaint.ID, complaint.Titulo, complaint.Descripcion, complaint.UserID)
	}
	return w.Flush()
}

func runComplaintsCreate(ctx context.Context, c *client, in services.ComplaintInput) error {
	user, err := c.requireLogin()
	if err != nil {
		return err
	}
	in.UserID = user.ID

	complaint, err := c.svc.Complaints.Create(ctx, in)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "✓ Complaint %d filed\n", complaint.ID)
	return nil
}
