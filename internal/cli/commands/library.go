package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marquee-dev/marquee/internal/authz"
	"github.com/marquee-dev/marquee/internal/catalog"
)

// NewReviewCmd creates the review command group
func NewReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Post and like reviews",
	}

	var form catalog.ReviewForm
	post := &cobra.Command{
		Use:   "post <movie-id>",
		Short: "Review a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("movie", args[0])
			if err != nil {
				return err
			}
			return runPostReview(cmd.Context(), id, form, cmdOptions(cmd)...)
		},
	}
	post.Flags().StringVarP(&form.Title, "title", "t", "", "Review title")
	post.Flags().StringVarP(&form.Body, "body", "b", "", "Review text")
	post.Flags().IntVarP(&form.Rating, "rating", "r", 0, "Rating from 1 to 5")

	cmd.AddCommand(post)
	cmd.AddCommand(newLikeCmd("like", "Like a review", true))
	cmd.AddCommand(newLikeCmd("unlike", "Take back a like", false))
	return cmd
}

func runPostReview(ctx context.Context, movieID int64, form catalog.ReviewForm, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}
	if err := o.authorize(ctx, authz.ReviewPage, false); err != nil {
		return err
	}

	if form.Title == "" && o.interactive {
		if form.Title, err = o.prompt("Title", false); err != nil {
			return err
		}
	}
	if form.Body == "" && o.interactive {
		if form.Body, err = o.prompt("Review", false); err != nil {
			return err
		}
	}

	review, err := o.app.Catalog.PostReview(ctx, movieID, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(o.out, "✓ Review #%d posted.\n", review.ID)
	return nil
}

func newLikeCmd(use, short string, like bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <review-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("review", args[0])
			if err != nil {
				return err
			}
			return runLike(cmd.Context(), id, like, cmdOptions(cmd)...)
		},
	}
}

func runLike(ctx context.Context, reviewID int64, like bool, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}
	if err := o.authorize(ctx, authz.ReviewPage, false); err != nil {
		return err
	}

	if like {
		err = o.app.Catalog.LikeReview(ctx, reviewID)
	} else {
		err = o.app.Catalog.UnlikeReview(ctx, reviewID)
	}
	if err != nil {
		return err
	}
	verb := "Liked"
	if !like {
		verb = "Unliked"
	}
	fmt.Fprintf(o.out, "✓ %s review #%d.\n", verb, reviewID)
	return nil
}

// NewLikedCmd creates the liked command
func NewLikedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "liked",
		Short: "List the reviews you liked",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLiked(cmd.Context(), cmdOptions(cmd)...)
		},
	}
}

func runLiked(ctx context.Context, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}
	if err := o.authorize(ctx, authz.LikedPage, false); err != nil {
		return err
	}

	reviews, err := o.app.Catalog.LikedReviews(ctx)
	if err != nil {
		return err
	}
	if len(reviews) == 0 {
		fmt.Fprintln(o.out, "You have not liked any reviews yet.")
		return nil
	}
	printReviews(o, reviews)
	return nil
}

// NewFavoritesCmd creates the favorites command group
func NewFavoritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"favs"},
		Short:   "List your favorite movies with recommendations",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFavorites(cmd.Context(), cmdOptions(cmd)...)
		},
	}
	cmd.AddCommand(newListEditCmd("add", "Add a movie to favorites", authz.FavoritesPage, func(o *options) listEdit {
		return o.app.Catalog.AddFavorite
	}, "added to favorites"))
	cmd.AddCommand(newListEditCmd("rm", "Remove a movie from favorites", authz.FavoritesPage, func(o *options) listEdit {
		return o.app.Catalog.RemoveFavorite
	}, "removed from favorites"))
	return cmd
}

func runFavorites(ctx context.Context, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}
	if err := o.authorize(ctx, authz.FavoritesPage, false); err != nil {
		return err
	}

	favs, err := o.app.Catalog.Favorites(ctx)
	if err != nil {
		return err
	}
	if len(favs) == 0 {
		fmt.Fprintln(o.out, "No favorites yet.")
		fmt.Fprintln(o.out, "\nAdd one with: marquee favorites add <movie-id>")
		return nil
	}

	cards := make([]catalog.Card, 0, len(favs))
	for _, f := range favs {
		cards = append(cards, f.Card)
	}
	printCards(o, cards)

	for _, f := range favs {
		if len(f.Recommendations) == 0 {
			continue
		}
		titles := make([]string, 0, len(f.Recommendations))
		for _, r := range f.Recommendations {
			titles = append(titles, r.Title)
		}
		fmt.Fprintf(o.out, "\nBecause you liked %s: %s\n", f.Title, strings.Join(titles, ", "))
	}
	return nil
}

// NewWatchlistCmd creates the watchlist command group
func NewWatchlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watchlist",
		Short: "List the movies you saved for later",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatchlist(cmd.Context(), cmdOptions(cmd)...)
		},
	}
	cmd.AddCommand(newListEditCmd("add", "Add a movie to the watchlist", authz.WatchlistPage, func(o *options) listEdit {
		return o.app.Catalog.AddToWatchlist
	}, "added to watchlist"))
	cmd.AddCommand(newListEditCmd("rm", "Remove a movie from the watchlist", authz.WatchlistPage, func(o *options) listEdit {
		return o.app.Catalog.RemoveFromWatchlist
	}, "removed from watchlist"))
	return cmd
}

func runWatchlist(ctx context.Context, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}
	if err := o.authorize(ctx, authz.WatchlistPage, false); err != nil {
		return err
	}

	cards, err := o.app.Catalog.Watchlist(ctx)
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		fmt.Fprintln(o.out, "Your watchlist is empty.")
		fmt.Fprintln(o.out, "\nAdd a movie with: marquee watchlist add <movie-id>")
		return nil
	}
	printCards(o, cards)
	return nil
}

type listEdit func(ctx context.Context, movieID int64) error

func newListEditCmd(use, short string, page authz.Page, pick func(*options) listEdit, done string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <movie-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("movie", args[0])
			if err != nil {
				return err
			}
			return runListEdit(cmd.Context(), page, id, pick, done, cmdOptions(cmd)...)
		},
	}
}

func runListEdit(ctx context.Context, page authz.Page, movieID int64, pick func(*options) listEdit, done string, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}
	if err := o.authorize(ctx, page, false); err != nil {
		return err
	}
	if err := pick(o)(ctx, movieID); err != nil {
		return err
	}
	fmt.Fprintf(o.out, "✓ Movie #%d %s.\n", movieID, done)
	return nil
}
