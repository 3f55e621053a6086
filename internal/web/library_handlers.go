package web

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/marquee-dev/marquee/internal/catalog"
)

// reviewAction runs a one-shot mutation on the :id in the path and goes back
// to the page the form was posted from.
func (s *Server) reviewAction(c *gin.Context, action func(context.Context, int64) error, done string) {
	id, err := pathID(c)
	if err != nil {
		s.renderError(c, http.StatusNotFound, err)
		return
	}
	if err := action(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	redirectWithFlash(c, backTo(c, "/"), done)
}

func (s *Server) favorites(c *gin.Context) {
	favs, err := s.app.Catalog.Favorites(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "favorites.html", gin.H{"Favorites": favs})
}

func (s *Server) watchlist(c *gin.Context) {
	cards, err := s.app.Catalog.Watchlist(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "watchlist.html", gin.H{"Movies": cards})
}

func (s *Server) liked(c *gin.Context) {
	reviews, err := s.app.Catalog.LikedReviews(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "liked.html", gin.H{"Reviews": reviews})
}

func (s *Server) profile(c *gin.Context) {
	user, err := s.app.Catalog.Profile(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "profile.html", gin.H{"User": user})
}

func (s *Server) updateProfile(c *gin.Context) {
	age, _ := strconv.Atoi(c.PostForm("age"))
	form := catalog.ProfileForm{
		FirstName: c.PostForm("firstName"),
		LastName:  c.PostForm("lastName"),
		Email:     c.PostForm("email"),
		Age:       age,
	}

	ctx := c.Request.Context()
	if _, err := s.app.Catalog.UpdateProfile(ctx, form); err != nil {
		if statusFor(err) != http.StatusUnprocessableEntity {
			s.fail(c, err)
			return
		}
		user, loadErr := s.app.Catalog.Profile(ctx)
		if loadErr != nil {
			s.fail(c, loadErr)
			return
		}
		s.render(c, http.StatusUnprocessableEntity, "profile.html", gin.H{"User": user, "Error": err})
		return
	}
	redirectWithFlash(c, "/profile", "Profile updated.")
}
