package web

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/marquee-dev/marquee/internal/account"
	"github.com/marquee-dev/marquee/internal/client"
	"github.com/marquee-dev/marquee/internal/session"
	"github.com/marquee-dev/marquee/internal/validation"
)

var funcMap = template.FuncMap{
	"stars": func(r float64) string {
		n := int(r + 0.5)
		if n < 0 {
			n = 0
		}
		if n > 5 {
			n = 5
		}
		return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
	},
	"join": strings.Join,
	"prev": func(n int) int { return n - 1 },
	"next": func(n int) int { return n + 1 },
	"fieldError": func(v any, field string) string {
		err, _ := v.(error)
		var verr *validation.Error
		if err != nil && errors.As(err, &verr) {
			return verr.Message(field)
		}
		return ""
	},
}

// NavLink is one entry of the page header.
type NavLink struct {
	Label  string
	Href   string
	Active bool
	Post   bool
}

// navLinks is recomputed from the session on every render so the header
// always matches what the store holds.
func navLinks(sess session.Session, current string) []NavLink {
	links := []NavLink{{Label: "Movies", Href: "/"}, {Label: "Search", Href: "/search"}}
	if sess.Authenticated() {
		links = append(links,
			NavLink{Label: "Favorites", Href: "/favorites"},
			NavLink{Label: "Watchlist", Href: "/watchlist"},
			NavLink{Label: "Liked", Href: "/liked"},
			NavLink{Label: "Profile", Href: "/profile"},
		)
		if sess.IsAdmin {
			links = append(links,
				NavLink{Label: "Flags", Href: "/admin/flags"},
				NavLink{Label: "Users", Href: "/admin/users"},
			)
		}
		links = append(links, NavLink{Label: "Log out", Href: "/logout", Post: true})
	} else {
		links = append(links,
			NavLink{Label: "Log in", Href: "/login"},
			NavLink{Label: "Register", Href: "/register"},
		)
	}
	for i := range links {
		links[i].Active = links[i].Href == current
	}
	return links
}

// render fills in the header data and executes the named template.
func (s *Server) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	sess, err := s.app.Sessions.Load()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read session")
	}
	data["Session"] = sess
	data["Nav"] = navLinks(sess, c.Request.URL.Path)
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = c.Query("flash")
	}
	c.HTML(status, name, data)
}

// renderError shows err. A rejected token means the session was just cleared,
// so the user goes back to the login page instead.
func (s *Server) renderError(c *gin.Context, status int, err error) {
	if client.IsStatus(err, http.StatusUnauthorized) || errors.Is(err, client.ErrNotAuthenticated) {
		c.Redirect(http.StatusSeeOther, "/login?flash="+url.QueryEscape("Your session has expired, please log in again."))
		return
	}
	s.render(c, status, "error.html", gin.H{"Status": status, "Error": err.Error()})
}

// statusFor maps an error to the status the page is served with.
func statusFor(err error) int {
	var apiErr *client.APIError
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, account.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		return apiErr.Status
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	s.renderError(c, statusFor(err), err)
}

// redirectWithFlash sends the browser to path with a one-shot message.
func redirectWithFlash(c *gin.Context, path, msg string) {
	target := path
	if msg != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		target = path + sep + "flash=" + url.QueryEscape(msg)
	}
	c.Redirect(http.StatusSeeOther, target)
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", c.Param("id"))
	}
	return id, nil
}

func pageParam(c *gin.Context) int {
	p, err := strconv.Atoi(c.Query("page"))
	if err != nil || p < 1 {
		return 1
	}
	return p
}

// backTo returns the same-site page to return to after a form post.
func backTo(c *gin.Context, fallback string) string {
	if next := c.PostForm("next"); localPath(next) {
		return next
	}
	return fallback
}

// localPath accepts absolute paths on this host only. Browsers read a
// backslash as a slash and drop tabs and newlines, so "/\host" or "/\t/host"
// would leave the site.
func localPath(p string) bool {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.ContainsAny(p, "\\\t\r\n") {
		return false
	}
	u, err := url.Parse(p)
	return err == nil && u.Scheme == "" && u.Host == ""
}
