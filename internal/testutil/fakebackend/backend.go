// Package fakebackend is an in-memory implementation of the review service
// API for tests. It issues real signed tokens and hashes passwords so that
// client code is exercised against the same failure modes as production.
package fakebackend

import (
	"fmt"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// User is an account known to the fake.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	Email        string `json:"email,omitempty"`
	Age          int    `json:"age,omitempty"`
	IsAdmin      bool   `json:"isAdmin"`
	IsBanned     bool   `json:"isBanned,omitempty"`
	PasswordHash []byte `json:"-"`
}

// Movie is a catalog entry.
type Movie struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	IMDbRating    float64  `json:"movieIMDbRating"`
	Genres        []string `json:"movieGenres"`
	Directors     []string `json:"directors"`
	MainStars     []string `json:"mainStars"`
	Description   string   `json:"description,omitempty"`
	DatePublished string   `json:"datePublished,omitempty"`
	Duration      int      `json:"duration"`
	YearReleased  int      `json:"yearReleased,omitempty"`
}

// Metadata is what the metadata proxy returns for a movie.
type Metadata struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Poster   string  `json:"poster,omitempty"`
	Overview string  `json:"overview,omitempty"`
	Rating   float64 `json:"rating,omitempty"`
}

// Review is a posted review.
type Review struct {
	ID            int64   `json:"id"`
	MovieID       int64   `json:"movieId"`
	UserID        int64   `json:"userId"`
	Title         string  `json:"reviewTitle"`
	Body          string  `json:"reviewBody"`
	Rating        float64 `json:"rating"`
	DatePosted    string  `json:"datePosted"`
	Flagged       bool    `json:"flagged"`
	FlaggedReason string  `json:"-"`
	Likes         int     `json:"likes"`
}

// Call is one request the fake received.
type Call struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

// Backend is a running fake service.
type Backend struct {
	server *httptest.Server
	secret []byte

	mu              sync.Mutex
	nextID          int64
	users           map[int64]*User
	movies          map[int64]*Movie
	metadata        map[int64]Metadata
	recommendations map[int64][]Metadata
	reviews         map[int64]*Review
	likes           map[int64]map[int64]bool // userID -> reviewID
	favorites       map[int64][]int64
	watchlist       map[int64][]int64
	revoked         map[string]bool
	resetTokens     map[string]int64
	calls           []Call

	logoutCalls  atomic.Int32
	logoutDelay  time.Duration
	logoutStatus int
	logoutDone   chan struct{}
}

// New starts a fake backend that is shut down when the test ends.
func New(t testing.TB) *Backend {
	t.Helper()

	gin.SetMode(gin.TestMode)

	b := &Backend{
		secret:          []byte("fake-backend-secret"),
		nextID:          1,
		users:           make(map[int64]*User),
		movies:          make(map[int64]*Movie),
		metadata:        make(map[int64]Metadata),
		recommendations: make(map[int64][]Metadata),
		reviews:         make(map[int64]*Review),
		likes:           make(map[int64]map[int64]bool),
		favorites:       make(map[int64][]int64),
		watchlist:       make(map[int64][]int64),
		revoked:         make(map[string]bool),
		resetTokens:     make(map[string]int64),
		logoutDone:      make(chan struct{}, 64),
	}
	b.server = httptest.NewServer(b.router())
	t.Cleanup(b.server.Close)
	return b
}

// URL is the base URL of the fake.
func (b *Backend) URL() string {
	return b.server.URL
}

func (b *Backend) id() int64 {
	id := b.nextID
	b.nextID++
	return id
}

// AddUser creates an account and returns its id.
func (b *Backend) AddUser(username, password string, admin bool) int64 {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("fakebackend: hash password: %v", err))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u := &User{ID: b.id(), Username: username, IsAdmin: admin, PasswordHash: hash, FirstName: username, Email: username + "@example.com", Age: 30}
	b.users[u.ID] = u
	return u.ID
}

// User returns a copy of the account with id.
func (b *Backend) User(id int64) (User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[id]
	if !ok {
		return User{}, false
	}
	return *u, true
}

// Ban marks an account as banned.
func (b *Backend) Ban(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u, ok := b.users[id]; ok {
		u.IsBanned = true
	}
}

// AddMovie adds a catalog entry and returns its id.
func (b *Backend) AddMovie(title string, year int, genres ...string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := &Movie{ID: b.id(), Title: title, YearReleased: year, Genres: genres, Duration: 120, IMDbRating: 7.5}
	b.movies[m.ID] = m
	return m.ID
}

// SetMetadata registers metadata for movieID. Movies without metadata get a 404
// from the proxy endpoints.
func (b *Backend) SetMetadata(movieID int64, meta Metadata, recs ...Metadata) {
	b.mu.Lock()
	defer b.mu.Unlock()
	meta.ID = movieID
	b.metadata[movieID] = meta
	b.recommendations[movieID] = recs
}

// AddReview stores a review and returns its id.
func (b *Backend) AddReview(movieID, userID int64, title, body string, rating float64) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := &Review{
		ID:         b.id(),
		MovieID:    movieID,
		UserID:     userID,
		Title:      title,
		Body:       body,
		Rating:     rating,
		DatePosted: time.Now().UTC().Format(time.RFC3339),
	}
	b.reviews[r.ID] = r
	return r.ID
}

// Flag marks a review as flagged for moderation.
func (b *Backend) Flag(reviewID int64, reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r, ok := b.reviews[reviewID]; ok {
		r.Flagged = true
		r.FlaggedReason = reason
	}
}

// Review returns a copy of a stored review.
func (b *Backend) Review(id int64) (Review, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.reviews[id]
	if !ok {
		return Review{}, false
	}
	return *r, true
}

// Favorites returns the favorite movie ids of userID.
func (b *Backend) Favorites(userID int64) []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int64(nil), b.favorites[userID]...)
}

// Watchlist returns the watchlist movie ids of userID.
func (b *Backend) Watchlist(userID int64) []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int64(nil), b.watchlist[userID]...)
}

// Liked reports whether userID liked reviewID.
func (b *Backend) Liked(userID, reviewID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.likes[userID][reviewID]
}

// ResetTokenFor returns the reset token issued to userID by /forgot-password.
func (b *Backend) ResetTokenFor(userID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	for token, id := range b.resetTokens {
		if id == userID {
			return token
		}
	}
	return ""
}

// Revoke makes the backend reject token from now on, as if it expired.
func (b *Backend) Revoke(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[token] = true
}

// SetLogoutBehavior makes /logout wait delay and then answer status
// (0 keeps 200).
func (b *Backend) SetLogoutBehavior(delay time.Duration, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logoutDelay = delay
	b.logoutStatus = status
}

// LogoutCalls is the number of /logout requests received.
func (b *Backend) LogoutCalls() int {
	return int(b.logoutCalls.Load())
}

// LogoutDone receives one value per finished /logout request.
func (b *Backend) LogoutDone() <-chan struct{} {
	return b.logoutDone
}

// Calls returns every request received so far.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// CallsTo returns the requests whose path starts with prefix.
func (b *Backend) CallsTo(prefix string) []Call {
	var out []Call
	for _, c := range b.Calls() {
		if strings.HasPrefix(c.Path, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (b *Backend) sortedReviews(keep func(*Review) bool) []Review {
	out := []Review{}
	for _, r := range b.reviews {
		if keep(r) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
