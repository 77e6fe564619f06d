package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/gametu-dev/gametu/internal/services"
)

// NewOffersCmd creates the offers command group
func NewOffersCmd(opts ...Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "offers",
		Aliases: []string{"offer"},
		Short:   "Browse and manage game offers",
	}

	cmd.AddCommand(
		newOffersListCmd(opts),
		newOffersShowCmd(opts),
		newOffersCreateCmd(opts),
		newOffersUpdateCmd(opts),
		newOffersDeleteCmd(opts),
		newOffersRateCmd(opts),
		newOffersMyRatingCmd(opts),
	)

	return cmd
}

func newOffersListCmd(opts []Option) *cobra.Command {
	var params services.SearchParams

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list", "search"},
		Short:   "List game offers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newOptions(opts).run(cmd, func(ctx context.Context, c *client) error {
				return runOffersList(ctx, c, params)
			})
		},
	}

	cmd.Flags().StringVar(&params.Title, "title", "", "Filter by title")
	cmd.Flags().StringVar(&params.Platform, "platform", "", "Filter by platform")
	cmd.Flags().StringVar(&params.Genre, "genre", "", "Filter by genre")

	return cmd
}

func runOffersList(ctx context.Context, c *client, params services.SearchParams) error {
	if _, err := c.requireLogin(); err != nil {
		return err
	}

	offers, err := c.svc.GameOffers.Search(ctx, params)
	if err != nil {
		return err
	}

	if len(offers) == 0 {
		fmt.Fprintln(c.out, "No game offers found.")
		fmt.Fprintln(c.out, "\nPublish one with: gametu offers create --title <title> --price <price>")
		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPLATFORM\tGENRE\tPRICE\tRATING\tACTIVE")
	fmt.Fprintln(w, "──\t─────\t────────\t─────\t─────\t──────\t──────")

	for _, offer := range offers {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f\t%s\t%s\n",
			offer.ID,
			offer.Title,
			offer.Platform,
			offer.Genre,
			offer.Price,
			formatRating(offer.Rating),
			yesNo(offer.Active),
		)
	}

	return w.Flush()
}

func newOffersShowCmd(opts []Option) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a game offer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return newOptions(opts).run(cmd, func(ctx context.Context, c *client) error {
				return runOffersShow(ctx, c, id)
			})
		},
	}
}

func runOffersShow(ctx context.Context, c *client, id int64) error {
	if _, err := c.requireLogin(); err != nil {
		return err
	}

	offer, err := c.svc.GameOffers.Get(ctx, id)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Title:\t%s\n", offer.Title)
	fmt.Fprintf(w, "Price:\t%.2f\n", offer.Price)
	if offer.DiscountPercentage != nil {
		fmt.Fprintf(w, "Discount:\t%.0f%%\n", *offer.DiscountPercentage)
	}
	if offer.Description != "" {
		fmt.Fprintf(w, "Description:\t%s\n", offer.Description)
	}
	fmt.Fprintf(w, "Platform:\t%s\n", offer.Platform)
	fmt.Fprintf(w, "Genre:\t%s\n", offer.Genre)
	fmt.Fprintf(w, "Developer:\t%s\n", offer.Developer)
	if offer.Publisher != "" {
		fmt.Fprintf(w, "Publisher:\t%s\n", offer.Publisher)
	}
	fmt.Fprintf(w, "Release date:\t%s\n", offer.ReleaseDate)
	fmt.Fprintf(w, "Offer valid until:\t%s\n", offer.OfferExpiration)
	if offer.Stock != nil {
		fmt.Fprintf(w, "Stock:\t%d\n", *offer.Stock)
	}
	if offer.AgeRating != "" {
		fmt.Fprintf(w, "Age rating:\t%s\n", offer.AgeRating)
	}
	if offer.ContactEmail != "" {
		fmt.Fprintf(w, "Contact:\t%s\n", offer.ContactEmail)
	}
	fmt.Fprintf(w, "Rating:\t%s\n", formatRating(offer.Rating))

	mine, err := c.svc.GameOffers.MyRating(ctx, id)
	if err != nil {
		log.Debug().Err(err).Int64("offer_id", id).Msg("Could not load own rating")
	} else if mine.Rating > 0 {
		fmt.Fprintf(w, "Your rating:\t%d/5\n", mine.Rating)
	}

	return w.Flush()
}

// offerFlags binds every writable offer field to a flag
type offerFlags struct {
	in       services.GameOfferInput
	price    float64
	active   bool
	discount float64
	stock    int
}

func (f *offerFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.in.Title, "title", "", "Title")
	fs.StringVar(&f.in.Description, "description", "", "Description")
	fs.Float64Var(&f.price, "price", 0, "Price")
	fs.StringVar(&f.in.Platform, "platform", "", "Platform")
	fs.StringVar(&f.in.Genre, "genre", "", "Genre")
	fs.StringVar(&f.in.Developer, "developer", "", "Developer")
	fs.StringVar(&f.in.Publisher, "publisher", "", "Publisher")
	fs.StringVar(&f.in.ReleaseDate, "release-date", "", "Release date (YYYY-MM-DD)")
	fs.StringVar(&f.in.ImageURL, "image-url", "", "Cover image URL")
	fs.BoolVar(&f.active, "active", true, "Whether the offer is listed")
	fs.StringVar(&f.in.ContactEmail, "contact-email", "", "Contact email")
	fs.StringVar(&f.in.OfferExpiration, "expires", "", "Offer expiration date (YYYY-MM-DD)")
	fs.Float64Var(&f.discount, "discount", 0, "Discount percentage")
	fs.IntVar(&f.stock, "stock", 0, "Units in stock")
	fs.StringVar(&f.in.AgeRating, "age-rating", "", "Age rating (e.g. PEGI 12)")
}

// input returns the offer body. Numeric and boolean fields are only sent when
// their flag was given, unless withDefaults is set.
func (f *offerFlags) input(fs *pflag.FlagSet, withDefaults bool) services.GameOfferInput {
	in := f.in
	if fs.Changed("price") {
		price := f.price
		in.Price = &price
	}
	if withDefaults || fs.Changed("active") {
		active := f.active
		in.Active = &active
	}
	if fs.Changed("discount") {
		discount := f.discount
		in.DiscountPercentage = &discount
	}
	if fs.Changed("stock") {
		stock := f.stock
		in.Stock = &stock
	}
	return in
}

func newOffersCreateCmd(opts []Option) *cobra.Command {
	var flags offerFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a new game offer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := flags.input(cmd.Flags(), true)
			return newOptions(opts).run(cmd, func(ctx context.Context, c *client) error {
				if _, err := c.requireLogin(); err != nil {
					return err
				}

				offer, err := c.svc.GameOffers.Create(ctx, in)
				if err != nil {
					return err
				}

				fmt.Fprintf(c.out, "✓ Created game offer %d (%s)\n", offer.ID, offer.Title)
				return nil
			})
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

func newOffersUpdateCmd(opts []Option) *cobra.Command {
	var flags offerFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a game offer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			in := flags.input(cmd.Flags(), false)
			return newOptions(opts).run(cmd, func(ctx context.Context, c *client) error {
				if _, err := c.requireLogin(); err != nil {
					return err
				}

				offer, err := c.svc.GameOffers.Update(ctx, id, in)
				if err != nil {
					return err
				}

				fmt.Fprintf(c.out, "✓ Updated game offer %d (%s)\n", offer.ID, offer.Title)
				return nil
			})
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

func newOffersDeleteCmd(opts []Option) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a game offer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return newOptions(opts).run(cmd, func(ctx context.Context, c *client) error {
				if _, err := c.requireLogin(); err != nil {
					return err
				}

				if !yes {
					if err := confirm(fmt.Sprintf("Delete game offer %d", id)); err != nil {
						return err
					}
				}

				if err := c.svc.GameOffers.Delete(ctx, id); err != nil {
					return err
				}

				fmt.Fprintf(c.out, "✓ Deleted game offer %d\n", id)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newOffersRateCmd(opts []Option) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <id> <1-5>",
		Short: "Rate a game offer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			stars, err := strconv.Atoi(args[1])
			if err != nil || stars < 1 || stars > 5 {
				return fmt.Errorf("rating must be a whole number between 1 and 5, got %q", args[1])
			}
			return newOptions(opts).run(cmd, func(ctx context.Context, c *client) error {
				if _, err := c.requireLogin(); err != nil {
					return err
				}

				summary, err := c.svc.GameOffers.Rate(ctx, id, stars)
				if err != nil {
					return err
				}

				fmt.Fprintf(c.out, "✓ Rated game offer %d with %d stars (average %.1f from %d votes)\n",
					id, stars, summary.Rating, summary.Votes)
				return nil
			})
		},
	}
}

func newOffersMyRatingCmd(opts []Option) *cobra.Command {
	return &cobra.Command{
		Use:   "my-rating <id>",
		Short: "Show your rating of a game offer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return newOptions(opts).run(cmd, func(ctx context.Context, c *client) error {
				if _, err := c.requireLogin(); err != nil {
					return err
				}

				mine, err := c.svc.GameOffers.MyRating(ctx, id)
				if err != nil {
					return err
				}

				if mine.Rating == 0 {
					fmt.Fprintf(c.out, "You have not rated game offer %d yet.\n", id)
					return nil
				}
				fmt.Fprintf(c.out, "Your rating for game offer %d: %d/5\n", id, mine.Rating)
				return nil
			})
		},
	}
}

// confirm asks before a destructive action; non-interactive sessions must pass --yes
func confirm(label string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("refusing to continue without confirmation in non-interactive mode (use --yes)")
	}

	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		return fmt.Errorf("cancelled")
	}
	return nil
}

func formatRating(r *float64) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *r)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
