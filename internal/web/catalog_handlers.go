package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/marquee-dev/marquee/internal/catalog"
)

func (s *Server) home(c *gin.Context) {
	cards, err := s.app.Catalog.Browse(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "movies.html", gin.H{"Title": "Movies", "Query": "", "Movies": cards})
}

func (s *Server) search(c *gin.Context) {
	query := c.Query("q")
	cards, err := s.app.Catalog.Search(c.Request.Context(), query)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "movies.html", gin.H{"Title": "Search", "Query": query, "Searching": true, "Movies": cards})
}

func (s *Server) movieDetails(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.renderError(c, http.StatusNotFound, err)
		return
	}
	s.showMovie(c, id, http.StatusOK, nil, catalog.ReviewForm{Rating: 5})
}

func (s *Server) showMovie(c *gin.Context, id int64, status int, formErr error, form catalog.ReviewForm) {
	details, err := s.app.Catalog.Details(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, status, "movie.html", gin.H{
		"Details": details,
		"Error":   formErr,
		"Form":    form,
	})
}

func (s *Server) postReview(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.renderError(c, http.StatusNotFound, err)
		return
	}
	rating, _ := strconv.Atoi(c.PostForm("rating"))
	form := catalog.ReviewForm{
		Title:  c.PostForm("reviewTitle"),
		Body:   c.PostForm("reviewBody"),
		Rating: rating,
	}

	if _, err := s.app.Catalog.PostReview(c.Request.Context(), id, form); err != nil {
		if status := statusFor(err); status == http.StatusUnprocessableEntity {
			s.showMovie(c, id, status, err, form)
			return
		}
		s.fail(c, err)
		return
	}
	redirectWithFlash(c, fmt.Sprintf("/movies/%d", id), "Review posted.")
}

func (s *Server) likeReview(c *gin.Context) {
	s.reviewAction(c, s.app.Catalog.LikeReview, "Review liked.")
}

func (s *Server) unlikeReview(c *gin.Context) {
	s.reviewAction(c, s.app.Catalog.UnlikeReview, "Like removed.")
}

func (s *Server) addFavorite(c *gin.Context) {
	s.reviewAction(c, s.app.Catalog.AddFavorite, "Added to favorites.")
}

func (s *Server) removeFavorite(c *gin.Context) {
	s.reviewAction(c, s.app.Catalog.RemoveFavorite, "Removed from favorites.")
}

func (s *Server) addToWatchlist(c *gin.Context) {
	s.reviewAction(c, s.app.Catalog.AddToWatchlist, "Added to watchlist.")
}

func (s *Server) removeFromWatchlist(c *gin.Context) {
	s.reviewAction(c, s.app.Catalog.RemoveFromWatchlist, "Removed from watchlist.")
}
