package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marquee-dev/marquee/internal/catalog"
	"github.com/marquee-dev/marquee/internal/client"
)

// NewMoviesCmd creates the movies command
func NewMoviesCmd() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:     "movies",
		Aliases: []string{"ls"},
		Short:   "Browse or search the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMovies(cmd.Context(), search, cmdOptions(cmd)...)
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Only show titles matching this text")

	return cmd
}

func runMovies(ctx context.Context, search string, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}

	cards, err := o.app.Catalog.Search(ctx, search)
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		if search != "" {
			fmt.Fprintf(o.out, "No movies match %q.\n", search)
		} else {
			fmt.Fprintln(o.out, "No movies found.")
		}
		return nil
	}

	printCards(o, cards)
	return nil
}

func printCards(o *options, cards []catalog.Card) {
	w := tabwriter.NewWriter(o.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tYEAR\tRATING\tGENRES")
	fmt.Fprintln(w, "──\t─────\t────\t──────\t──────")
	for _, c := range cards {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			c.ID,
			c.Title,
			orDash(c.YearReleased),
			rating(c.IMDbRating),
			strings.Join(c.Genres, ", "),
		)
	}
	w.Flush()
}

// NewMovieCmd creates the movie command
func NewMovieCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "movie <movie-id>",
		Short: "Show a movie with its reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("movie", args[0])
			if err != nil {
				return err
			}
			return runMovie(cmd.Context(), id, cmdOptions(cmd)...)
		},
	}
}

func runMovie(ctx context.Context, movieID int64, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}

	d, err := o.app.Catalog.Details(ctx, movieID)
	if err != nil {
		return err
	}

	m := d.Movie
	fmt.Fprintf(o.out, "%s", m.Title)
	if m.YearReleased != 0 {
		fmt.Fprintf(o.out, " (%d)", m.YearReleased)
	}
	fmt.Fprintln(o.out)

	w := tabwriter.NewWriter(o.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Rating:\t%s\n", rating(m.IMDbRating))
	if len(m.Genres) > 0 {
		fmt.Fprintf(w, "  Genres:\t%s\n", strings.Join(m.Genres, ", "))
	}
	if len(m.Directors) > 0 {
		fmt.Fprintf(w, "  Directed by:\t%s\n", strings.Join(m.Directors, ", "))
	}
	if len(m.MainStars) > 0 {
		fmt.Fprintf(w, "  Starring:\t%s\n", strings.Join(m.MainStars, ", "))
	}
	if m.Duration > 0 {
		fmt.Fprintf(w, "  Runtime:\t%d min\n", m.Duration)
	}
	w.Flush()

	overview := m.Description
	if d.Metadata != nil && d.Metadata.Overview != "" {
		overview = d.Metadata.Overview
	}
	if overview != "" {
		fmt.Fprintf(o.out, "\n%s\n", overview)
	}

	fmt.Fprintf(o.out, "\nReviews (%d):\n", len(d.Reviews))
	if len(d.Reviews) == 0 {
		fmt.Fprintf(o.out, "  No reviews yet. Write one with: marquee review post %d\n", m.ID)
		return nil
	}
	printReviews(o, d.Reviews)
	return nil
}

func printReviews(o *options, reviews []client.Review) {
	w := tabwriter.NewWriter(o.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMOVIE\tRATING\tLIKES\tTITLE")
	fmt.Fprintln(w, "──\t─────\t──────\t─────\t─────")
	for _, r := range reviews {
		fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%s\n", r.ID, r.MovieID, stars(r.Rating), r.Likes, r.Title)
	}
	w.Flush()
}

func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, s)
	}
	return id, nil
}

func orDash(n int) string {
	if n == 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

func rating(r float64) string {
	if r == 0 {
		return "-"
	}
	return strconv.FormatFloat(r, 'f', 1, 64)
}

func stars(r float64) string {
	n := int(r + 0.5)
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}
