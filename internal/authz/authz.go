// Package authz decides whether a protected view may be shown based only on
// the locally stored session. It never talks to the backend: a token that has
// expired server-side still passes until a backend call is rejected and the
// session is cleared.
package authz

// LoginRoute is where unauthenticated and unprivileged users are sent.
const LoginRoute = "/login"

// View is anything that can be navigated to.
type View interface {
	Route() string
}

// Page is a view identified only by its route.
type Page string

func (p Page) Route() string {
	return string(p)
}

// Protected pages shared by the terminal and web surfaces.
const (
	ProfilePage   Page = "/profile"
	FavoritesPage Page = "/favorites"
	WatchlistPage Page = "/watchlist"
	LikedPage     Page = "/liked"
	ReviewPage    Page = "/review"
	AdminFlags    Page = "/admin/flags"
	AdminUsers    Page = "/admin/users"
	AdminMovies   Page = "/admin/movies"
)

// Redirect replaces the requested view. Replace means the redirect takes the
// place of the current navigation entry, so going back does not return to the
// view that was refused.
type Redirect struct {
	To      string
	Replace bool
}

func (r Redirect) Route() string {
	return r.To
}

// LoginRedirect is the outcome for every refused view.
var LoginRedirect = Redirect{To: LoginRoute, Replace: true}

// SessionReader is the part of the session store the authorizer needs.
type SessionReader interface {
	Token() (string, error)
	IsAdmin() (bool, error)
}

// Authorizer guards views against the session store.
type Authorizer struct {
	sessions SessionReader
}

func New(sessions SessionReader) *Authorizer {
	return &Authorizer{sessions: sessions}
}

// Authorize returns view unchanged when a token is stored, LoginRedirect
// otherwise. Storage errors are returned as-is.
func (a *Authorizer) Authorize(view View) (View, error) {
	token, err := a.sessions.Token()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return LoginRedirect, nil
	}
	return view, nil
}

// AuthorizeAdmin is Authorize plus the admin flag. A logged-in user without
// the flag gets the same LoginRedirect as an anonymous one.
func (a *Authorizer) AuthorizeAdmin(view View) (View, error) {
	decided, err := a.Authorize(view)
	if err != nil {
		return nil, err
	}
	if IsRedirect(decided) {
		return decided, nil
	}

	admin, err := a.sessions.IsAdmin()
	if err != nil {
		return nil, err
	}
	if !admin {
		return LoginRedirect, nil
	}
	return view, nil
}

// IsRedirect reports whether v is a Redirect or a non-nil *Redirect.
func IsRedirect(v View) bool {
	_, ok := AsRedirect(v)
	return ok
}

// AsRedirect returns the Redirect held in v, by value or by pointer.
func AsRedirect(v View) (Redirect, bool) {
	switch r := v.(type) {
	case Redirect:
		return r, true
	case *Redirect:
		if r != nil {
			return *r, true
		}
	}
	return Redirect{}, false
}
