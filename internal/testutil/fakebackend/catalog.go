package fakebackend

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

func sortUsers(users []User) {
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
}

func paginate[T any](items []T, page, size int) []T {
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func (b *Backend) moviesMatching(keep func(*Movie) bool) []Movie {
	out := []Movie{}
	for _, m := range b.movies {
		if keep(m) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (b *Backend) moviesByID(ids []int64) []Movie {
	out := []Movie{}
	for _, id := range ids {
		if m, ok := b.movies[id]; ok {
			out = append(out, *m)
		}
	}
	return out
}

func (b *Backend) listMovies(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, b.moviesMatching(func(*Movie) bool { return true }))
}

func (b *Backend) searchMovies(c *gin.Context) {
	q := strings.ToLower(strings.TrimSpace(c.Query("query")))
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, b.moviesMatching(func(m *Movie) bool {
		return q == "" || strings.Contains(strings.ToLower(m.Title), q)
	}))
}

func (b *Backend) getMovie(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.movies[id]
	if !ok {
		detail(c, http.StatusNotFound, "Movie not found")
		return
	}
	c.JSON(http.StatusOK, m)
}

func (b *Backend) createMovie(c *gin.Context) {
	var m Movie
	if err := c.ShouldBindJSON(&m); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	m.ID = b.id()
	b.movies[m.ID] = &m
	c.JSON(http.StatusCreated, m)
}

func (b *Backend) updateMovie(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var m Movie
	if err := c.ShouldBindJSON(&m); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.movies[id]; !ok {
		detail(c, http.StatusNotFound, "Movie not found")
		return
	}
	m.ID = id
	b.movies[id] = &m
	c.JSON(http.StatusOK, m)
}

func (b *Backend) deleteMovie(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.movies[id]; !ok {
		detail(c, http.StatusNotFound, "Movie not found")
		return
	}
	delete(b.movies, id)
	c.JSON(http.StatusOK, gin.H{"message": "Movie deleted"})
}

func (b *Backend) metadataFor(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	meta, ok := b.metadata[id]
	if !ok {
		detail(c, http.StatusNotFound, "No metadata for movie")
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (b *Backend) recommendationsFor(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.metadata[id]; !ok {
		detail(c, http.StatusNotFound, "No metadata for movie")
		return
	}
	recs := b.recommendations[id]
	if recs == nil {
		recs = []Metadata{}
	}
	c.JSON(http.StatusOK, recs)
}

func (b *Backend) movieReviews(c *gin.Context) {
	movieID, err := strconv.ParseInt(c.Query("query"), 10, 64)
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, "invalid query")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, b.sortedReviews(func(r *Review) bool { return r.MovieID == movieID }))
}

func (b *Backend) postReview(c *gin.Context) {
	movieID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Title  string  `json:"reviewTitle" binding:"required"`
		Body   string  `json:"reviewBody" binding:"required"`
		Rating float64 `json:"rating"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	me := caller(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.movies[movieID]; !ok {
		detail(c, http.StatusNotFound, "Movie not found")
		return
	}
	r := &Review{
		ID:         b.id(),
		MovieID:    movieID,
		UserID:     me.ID,
		Title:      req.Title,
		Body:       req.Body,
		Rating:     req.Rating,
		DatePosted: time.Now().UTC().Format(time.RFC3339),
	}
	b.reviews[r.ID] = r
	c.JSON(http.StatusCreated, r)
}

func (b *Backend) deleteReview(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	me := caller(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.reviews[id]
	if !ok {
		detail(c, http.StatusNotFound, "Review not found")
		return
	}
	if r.UserID != me.ID && !me.IsAdmin {
		detail(c, http.StatusForbidden, "Not allowed to delete this review")
		return
	}
	delete(b.reviews, id)
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}

func (b *Backend) setLike(liked bool) func(c *gin.Context) {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		me := caller(c)
		b.mu.Lock()
		defer b.mu.Unlock()
		r, ok := b.reviews[id]
		if !ok {
			detail(c, http.StatusNotFound, "Review not found")
			return
		}
		if b.likes[me.ID] == nil {
			b.likes[me.ID] = make(map[int64]bool)
		}
		switch {
		case liked && !b.likes[me.ID][id]:
			b.likes[me.ID][id] = true
			r.Likes++
		case !liked && b.likes[me.ID][id]:
			delete(b.likes[me.ID], id)
			r.Likes--
		}
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	}
}

func (b *Backend) likeReview(c *gin.Context)   { b.setLike(true)(c) }
func (b *Backend) unlikeReview(c *gin.Context) { b.setLike(false)(c) }

func (b *Backend) likedReviews(c *gin.Context) {
	me := caller(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, b.sortedReviews(func(r *Review) bool { return b.likes[me.ID][r.ID] }))
}

func (b *Backend) listFavorites(c *gin.Context) {
	me := caller(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, b.moviesByID(b.favorites[me.ID]))
}

func (b *Backend) addFavorite(c *gin.Context) {
	b.editList(c, b.favorites, true)
}

func (b *Backend) removeFavorite(c *gin.Context) {
	b.editList(c, b.favorites, false)
}

func (b *Backend) listWatchlist(c *gin.Context) {
	me := caller(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, b.moviesByID(b.watchlist[me.ID]))
}

func (b *Backend) addToWatchlist(c *gin.Context) {
	b.editList(c, b.watchlist, true)
}

func (b *Backend) removeFromWatchlist(c *gin.Context) {
	b.editList(c, b.watchlist, false)
}

func (b *Backend) editList(c *gin.Context, lists map[int64][]int64, add bool) {
	movieID, ok := paramID(c, "movieId")
	if !ok {
		return
	}
	me := caller(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.movies[movieID]; !ok {
		detail(c, http.StatusNotFound, "Movie not found")
		return
	}

	current := lists[me.ID]
	idx := -1
	for i, id := range current {
		if id == movieID {
			idx = i
			break
		}
	}
	switch {
	case add && idx < 0:
		lists[me.ID] = append(current, movieID)
	case add:
		detail(c, http.StatusBadRequest, "Movie already in list")
		return
	case idx < 0:
		detail(c, http.StatusNotFound, "Movie not in list")
		return
	default:
		lists[me.ID] = append(current[:idx:idx], current[idx+1:]...)
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

type flaggedReview struct {
	ID            int64  `json:"id"`
	ReviewID      int64  `json:"reviewId"`
	MovieID       int64  `json:"movieId"`
	UserID        int64  `json:"userId"`
	Content       string `json:"content"`
	FlaggedReason string `json:"flaggedReason"`
}

func (b *Backend) flaggedReviews(c *gin.Context) {
	page := queryInt(c, "page", 1)
	size := queryInt(c, "pageSize", 10)

	b.mu.Lock()
	defer b.mu.Unlock()
	flagged := b.sortedReviews(func(r *Review) bool { return r.Flagged })
	items := make([]flaggedReview, 0, len(flagged))
	for _, r := range flagged {
		items = append(items, flaggedReview{
			ID:            r.ID,
			ReviewID:      r.ID,
			MovieID:       r.MovieID,
			UserID:        r.UserID,
			Content:       r.Body,
			FlaggedReason: r.FlaggedReason,
		})
	}
	pageCount := (len(items) + size - 1) / size
	if pageCount == 0 {
		pageCount = 1
	}
	c.JSON(http.StatusOK, gin.H{
		"page":         page,
		"pageCount":    pageCount,
		"totalFlagged": len(items),
		"reviews":      paginate(items, page, size),
	})
}

// acceptFlag upholds the report and removes the review.
func (b *Backend) acceptFlag(c *gin.Context) {
	b.resolveFlag(c, func(r *Review) {
		delete(b.reviews, r.ID)
	})
}

// rejectFlag dismisses the report and keeps the review.
func (b *Backend) rejectFlag(c *gin.Context) {
	b.resolveFlag(c, func(r *Review) {
		r.Flagged = false
		r.FlaggedReason = ""
	})
}

func (b *Backend) resolveFlag(c *gin.Context, apply func(*Review)) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.reviews[id]
	if !ok || !r.Flagged {
		detail(c, http.StatusNotFound, "Flagged review not found")
		return
	}
	apply(r)
	c.JSON(http.StatusOK, gin.H{"message": "Flag resolved"})
}
