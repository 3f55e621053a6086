package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/marquee-dev/marquee/internal/authz"
)

// RequireSession lets the request through when a session token is stored and
// redirects to the login page otherwise. 303 makes the browser replace the
// refused request with a GET of the login page.
func RequireSession(a *authz.Authorizer, log zerolog.Logger) gin.HandlerFunc {
	return guard(a.Authorize, log)
}

// RequireAdmin is RequireSession plus the admin flag. Logged in users without
// the flag are sent to the login page as well.
func RequireAdmin(a *authz.Authorizer, log zerolog.Logger) gin.HandlerFunc {
	return guard(a.AuthorizeAdmin, log)
}

func guard(check func(authz.View) (authz.View, error), log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		decided, err := check(authz.Page(c.Request.URL.Path))
		if err != nil {
			log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Failed to read session")
			c.String(http.StatusInternalServerError, "failed to read session")
			c.Abort()
			return
		}
		if r, ok := authz.AsRedirect(decided); ok {
			log.Debug().Str("path", c.Request.URL.Path).Str("to", r.To).Msg("Redirecting unauthorized request")
			c.Redirect(redirectStatus(r), r.To)
			c.Abort()
			return
		}
		c.Next()
	}
}

// SameOrigin refuses state-changing requests that a browser sent on behalf of
// another site. Every form acts with the stored token, so a cross-site post
// must not reach a handler. Requests without Origin or Sec-Fetch-Site come
// from non-browser clients and pass.
func SameOrigin(allowed []string, log zerolog.Logger) gin.HandlerFunc {
	trusted := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		trusted[strings.TrimRight(strings.ToLower(o), "/")] = true
	}
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if crossSite(c.Request, trusted) {
			log.Warn().
				Str("path", c.Request.URL.Path).
				Str("origin", c.GetHeader("Origin")).
				Str("fetch_site", c.GetHeader("Sec-Fetch-Site")).
				Msg("Refusing cross-site request")
			c.String(http.StatusForbidden, "cross-site request refused")
			c.Abort()
			return
		}
		c.Next()
	}
}

func crossSite(r *http.Request, trusted map[string]bool) bool {
	origin := strings.ToLower(r.Header.Get("Origin"))
	if origin != "" {
		if origin == "null" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return true
		}
		return !strings.EqualFold(u.Host, r.Host) && !trusted[origin]
	}
	switch r.Header.Get("Sec-Fetch-Site") {
	case "", "same-origin", "none":
		return false
	}
	return true
}

func redirectStatus(r authz.Redirect) int {
	if r.Replace {
		return http.StatusSeeOther
	}
	return http.StatusFound
}
