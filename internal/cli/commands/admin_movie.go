package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marquee-dev/marquee/internal/authz"
	"github.com/marquee-dev/marquee/internal/client"
	"github.com/marquee-dev/marquee/internal/moderation"
)

type movieFlags struct {
	title, genres, directors, stars string
	description, published          string
	rating                          float64
	duration, year                  int
}

func (f *movieFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Title")
	cmd.Flags().StringVar(&f.genres, "genres", "", "Comma separated genres")
	cmd.Flags().StringVar(&f.directors, "directors", "", "Comma separated directors")
	cmd.Flags().StringVar(&f.stars, "stars", "", "Comma separated main cast")
	cmd.Flags().StringVar(&f.description, "description", "", "Synopsis")
	cmd.Flags().StringVar(&f.published, "published", "", "Release date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&f.rating, "rating", 0, "IMDb rating (0-10)")
	cmd.Flags().IntVar(&f.duration, "duration", 0, "Runtime in minutes")
	cmd.Flags().IntVar(&f.year, "year", 0, "Release year")
}

func (f *movieFlags) input() client.MovieInput {
	return client.MovieInput{
		Title:         f.title,
		IMDbRating:    f.rating,
		Genres:        moderation.SplitList(f.genres),
		Directors:     moderation.SplitList(f.directors),
		MainStars:     moderation.SplitList(f.stars),
		Description:   f.description,
		DatePublished: f.published,
		Duration:      f.duration,
		YearReleased:  f.year,
	}
}

func newAdminMovieCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movie",
		Short: "Add, edit or remove catalog entries",
	}

	var add movieFlags
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a movie",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSaveMovie(cmd.Context(), 0, add.input(), cmdOptions(cmd)...)
		},
	}
	add.register(addCmd)

	var edit movieFlags
	editCmd := &cobra.Command{
		Use:   "edit <movie-id>",
		Short: "Replace a movie's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("movie", args[0])
			if err != nil {
				return err
			}
			return runSaveMovie(cmd.Context(), id, edit.input(), cmdOptions(cmd)...)
		},
	}
	edit.register(editCmd)

	var yes bool
	rmCmd := &cobra.Command{
		Use:   "rm <movie-id>",
		Short: "Remove a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("movie", args[0])
			if err != nil {
				return err
			}
			return runDeleteMovie(cmd.Context(), id, yes, cmdOptions(cmd)...)
		},
	}
	rmCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	cmd.AddCommand(addCmd, editCmd, rmCmd)
	return cmd
}

// runSaveMovie creates a movie when movieID is 0 and replaces it otherwise.
func runSaveMovie(ctx context.Context, movieID int64, in client.MovieInput, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}
	if err := o.authorize(ctx, authz.AdminMovies, true); err != nil {
		return err
	}

	var movie *client.Movie
	if movieID == 0 {
		movie, err = o.app.Moderation.CreateMovie(ctx, in)
	} else {
		movie, err = o.app.Moderation.UpdateMovie(ctx, movieID, in)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(o.out, "✓ Saved movie #%d: %s\n", movie.ID, movie.Title)
	return nil
}

func runDeleteMovie(ctx context.Context, movieID int64, yes bool, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}
	if err := o.authorize(ctx, authz.AdminMovies, true); err != nil {
		return err
	}
	if !yes && !o.confirm(fmt.Sprintf("Delete movie #%d", movieID)) {
		return errors.New("aborted (use --yes to skip confirmation)")
	}

	if err := o.app.Moderation.DeleteMovie(ctx, movieID); err != nil {
		return err
	}
	fmt.Fprintf(o.out, "✓ Movie #%d deleted.\n", movieID)
	return nil
}
