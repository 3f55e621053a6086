package fakebackend

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"
)

const (
	userKey  = "user"
	tokenKey = "token"
)

func (b *Backend) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(b.recordCalls())

	r.POST("/token", b.login)
	r.POST("/users", b.createUser)
	r.POST("/forgot-password", b.forgotPassword)
	r.POST("/reset-password", b.resetPassword)

	public := r.Group("")
	public.Use(b.optionalAuth())
	{
		public.GET("/movies", b.listMovies)
		public.GET("/movies/search", b.searchMovies)
		public.GET("/movies/:id", b.getMovie)
		public.GET("/reviews/search", b.movieReviews)
		public.GET("/tmdb/details/:id", b.metadataFor)
		public.GET("/tmdb/recommendations/:id", b.recommendationsFor)
	}

	authed := r.Group("")
	authed.Use(b.requireAuth())
	{
		authed.POST("/logout", b.logout)

		authed.GET("/users/:id", b.getUser)
		authed.PUT("/users/:id", b.updateUser)
		authed.GET("/users/likedReviews", b.likedReviews)
		authed.GET("/users/watchlist", b.listWatchlist)
		authed.POST("/users/watchlist/:movieId", b.addToWatchlist)
		authed.DELETE("/users/watchlist/:movieId", b.removeFromWatchlist)

		authed.GET("/favorites/", b.listFavorites)
		authed.POST("/favorites/:movieId", b.addFavorite)
		authed.DELETE("/favorites/:movieId", b.removeFavorite)

		authed.POST("/reviews/:id", b.postReview)
		authed.DELETE("/reviews/:id", b.deleteReview)
		authed.POST("/reviews/:id/like", b.likeReview)
		authed.DELETE("/reviews/:id/like", b.unlikeReview)

		admin := authed.Group("")
		admin.Use(adminOnly())
		{
			admin.GET("/users", b.listUsers)
			admin.POST("/movies", b.createMovie)
			admin.PUT("/movies/:id", b.updateMovie)
			admin.DELETE("/movies/:id", b.deleteMovie)
			admin.GET("/admin/reports/reviews", b.flaggedReviews)
			admin.POST("/admin/reviews/:id/acceptFlag", b.acceptFlag)
			admin.POST("/admin/reviews/:id/rejectFlag", b.rejectFlag)
			admin.PUT("/admin/:id/grantAdmin", b.setAdmin(true))
			admin.PUT("/admin/:id/revokeAdmin", b.setAdmin(false))
		}
	}

	return r
}

func (b *Backend) recordCalls() gin.HandlerFunc {
	return func(c *gin.Context) {
		b.mu.Lock()
		b.calls = append(b.calls, Call{
			Method:        c.Request.Method,
			Path:          c.Request.URL.Path,
			Authorization: c.GetHeader("Authorization"),
			RequestID:     c.GetHeader("X-Request-ID"),
		})
		b.mu.Unlock()
		c.Next()
	}
}

func detail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}

func (b *Backend) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, raw, err := b.parseToken(c.GetHeader("Authorization"))
		if err != nil {
			detail(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		c.Set(userKey, u)
		c.Set(tokenKey, raw)
		c.Next()
	}
}

// optionalAuth attaches the caller when a valid token is presented and lets
// anonymous requests through.
func (b *Backend) optionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if u, raw, err := b.parseToken(c.GetHeader("Authorization")); err == nil {
			c.Set(userKey, u)
			c.Set(tokenKey, raw)
		}
		c.Next()
	}
}

func adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !caller(c).IsAdmin {
			detail(c, http.StatusForbidden, "Admin privileges required")
			return
		}
		c.Next()
	}
}

func caller(c *gin.Context) *User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	return v.(*User)
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, "invalid "+name)
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func (b *Backend) login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	b.mu.Lock()
	var found *User
	for _, u := range b.users {
		if u.Username == username {
			found = u
			break
		}
	}
	b.mu.Unlock()

	if found == nil || bcrypt.CompareHashAndPassword(found.PasswordHash, []byte(password)) != nil {
		detail(c, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	if found.IsBanned {
		detail(c, http.StatusForbidden, "This account has been banned")
		return
	}

	token, err := b.issueToken(found)
	if err != nil {
		detail(c, http.StatusInternalServerError, "failed to issue token")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Login successful",
		"access_token": token,
		"token_type":   "bearer",
		"userId":       found.ID,
		"username":     found.Username,
		"isAdmin":      found.IsAdmin,
	})
}

func (b *Backend) logout(c *gin.Context) {
	b.logoutCalls.Add(1)
	defer func() {
		select {
		case b.logoutDone <- struct{}{}:
		default:
		}
	}()

	b.mu.Lock()
	delay, status := b.logoutDelay, b.logoutStatus
	b.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-c.Request.Context().Done():
			return
		}
	}
	if status != 0 && status != http.StatusOK {
		detail(c, status, "logout failed")
		return
	}

	b.Revoke(c.GetString(tokenKey))
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

type createUserBody struct {
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" binding:"required"`
	Age       int    `json:"age"`
	Password  string `json:"pw" binding:"required"`
}

func (b *Backend) createUser(c *gin.Context) {
	var req createUserBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"detail": []gin.H{{"loc": []string{"body"}, "msg": err.Error()}},
		})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		detail(c, http.StatusInternalServerError, "failed to hash password")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if strings.EqualFold(u.Username, req.Username) {
			detail(c, http.StatusBadRequest, "Username already registered")
			return
		}
	}
	u := &User{
		ID:           b.id(),
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Age:          req.Age,
		PasswordHash: hash,
	}
	b.users[u.ID] = u
	c.JSON(http.StatusCreated, u)
}

func (b *Backend) forgotPassword(c *gin.Context) {
	email := c.PostForm("email")
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if strings.EqualFold(u.Email, email) {
			b.resetTokens[ulid.Make().String()] = u.ID
			break
		}
	}
	// Unknown addresses get the same answer so accounts cannot be probed.
	c.JSON(http.StatusOK, gin.H{"message": "If the address is registered, a reset link has been sent"})
}

func (b *Backend) resetPassword(c *gin.Context) {
	token := c.PostForm("token")
	password := c.PostForm("new_password")
	if len(password) < 8 {
		detail(c, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		detail(c, http.StatusInternalServerError, "failed to hash password")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.resetTokens[token]
	if !ok {
		detail(c, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}
	delete(b.resetTokens, token)
	b.users[id].PasswordHash = hash
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}

func (b *Backend) getUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[id]
	if !ok {
		detail(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, u)
}

func (b *Backend) updateUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	me := caller(c)
	if me.ID != id && !me.IsAdmin {
		detail(c, http.StatusForbidden, "Not allowed to edit this user")
		return
	}
	var req struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Age       int    `json:"age"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[id]
	if !ok {
		detail(c, http.StatusNotFound, "User not found")
		return
	}
	if req.FirstName != "" {
		u.FirstName = req.FirstName
	}
	if req.LastName != "" {
		u.LastName = req.LastName
	}
	if req.Email != "" {
		u.Email = req.Email
	}
	if req.Age != 0 {
		u.Age = req.Age
	}
	c.JSON(http.StatusOK, u)
}

func (b *Backend) listUsers(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	b.mu.Lock()
	defer b.mu.Unlock()
	all := make([]User, 0, len(b.users))
	for _, u := range b.users {
		all = append(all, *u)
	}
	sortUsers(all)
	c.JSON(http.StatusOK, paginate(all, page, limit))
}

func (b *Backend) setAdmin(admin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		u, ok := b.users[id]
		if !ok {
			detail(c, http.StatusNotFound, "User not found")
			return
		}
		u.IsAdmin = admin
		msg := "Admin privileges revoked"
		if admin {
			msg = "Admin privileges granted"
		}
		c.JSON(http.StatusOK, gin.H{"message": msg})
	}
}
