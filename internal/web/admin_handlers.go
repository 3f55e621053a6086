package web

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) flags(c *gin.Context) {
	page, err := s.app.Moderation.FlagQueue(c.Request.Context(), pageParam(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "flags.html", gin.H{"Queue": page})
}

// flagAction accepts, rejects or deletes the flagged review in the path.
func (s *Server) flagAction(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.renderError(c, http.StatusNotFound, err)
		return
	}

	ctx := c.Request.Context()
	var msg string
	switch action := c.Param("action"); action {
	case "accept":
		msg, err = s.app.Moderation.Accept(ctx, nil, id)
	case "reject":
		msg, err = s.app.Moderation.Reject(ctx, nil, id)
	case "delete":
		msg, err = s.app.Moderation.Delete(ctx, nil, id)
	default:
		s.renderError(c, http.StatusNotFound, fmt.Errorf("unknown action %q", action))
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	redirectWithFlash(c, backTo(c, "/admin/flags"), msg)
}

func (s *Server) users(c *gin.Context) {
	page, err := s.app.Moderation.Users(c.Request.Context(), pageParam(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "users.html", gin.H{"Users": page})
}

// userAction grants or revokes admin rights.
func (s *Server) userAction(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.renderError(c, http.StatusNotFound, err)
		return
	}

	ctx := c.Request.Context()
	var msg string
	switch action := c.Param("action"); action {
	case "grant":
		msg, err = s.app.Moderation.Grant(ctx, nil, id)
	case "revoke":
		msg, err = s.app.Moderation.Revoke(ctx, nil, id)
	default:
		s.renderError(c, http.StatusNotFound, fmt.Errorf("unknown action %q", action))
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	redirectWithFlash(c, backTo(c, "/admin/users"), msg)
}
