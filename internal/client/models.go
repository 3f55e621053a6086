package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an identifier the backend sends either as a JSON number or a string.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Int64 parses the ID as a number.
func (id ID) Int64() (int64, error) {
	return strconv.ParseInt(string(id), 10, 64)
}

// LoginResponse represents the /token response. Older backends used
// snake_case keys for the user fields; both spellings are accepted.
type LoginResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      ID     `json:"userId"`
	Username    string `json:"username"`
	IsAdmin     bool   `json:"isAdmin"`
}

func (r *LoginResponse) UnmarshalJSON(data []byte) error {
	type plain LoginResponse
	var aux struct {
		plain
		LegacyUserID  *ID   `json:"user_id"`
		LegacyIsAdmin *bool `json:"is_admin"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = LoginResponse(aux.plain)
	if r.UserID == "" && aux.LegacyUserID != nil {
		r.UserID = *aux.LegacyUserID
	}
	if aux.LegacyIsAdmin != nil && *aux.LegacyIsAdmin {
		r.IsAdmin = true
	}
	return nil
}

// MessageResponse is the body of most admin actions.
type MessageResponse struct {
	Message string `json:"message"`
}

// User is a backend account.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Age       int    `json:"age,omitempty"`
	IsAdmin   bool   `json:"isAdmin"`
	IsBanned  bool   `json:"isBanned,omitempty"`
}

// CreateUserRequest represents the account creation body
type CreateUserRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Age       int    `json:"age"`
	Password  string `json:"pw"`
}

// UpdateUserRequest carries the profile fields a user may change. Empty
// fields are left untouched by the backend.
type UpdateUserRequest struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Age       int    `json:"age,omitempty"`
}

// Movie is a catalog entry as stored by the backend.
type Movie struct {
	ID            int64    `json:"id"`
	TMDbID        int64    `json:"tmdbId,omitempty"`
	Title         string   `json:"title"`
	IMDbRating    float64  `json:"movieIMDbRating,omitempty"`
	Genres        []string `json:"movieGenres,omitempty"`
	Directors     []string `json:"directors,omitempty"`
	MainStars     []string `json:"mainStars,omitempty"`
	Description   string   `json:"description,omitempty"`
	DatePublished string   `json:"datePublished,omitempty"`
	Duration      int      `json:"duration,omitempty"`
	YearReleased  int      `json:"yearReleased,omitempty"`
}

// MovieInput is the body for creating or replacing a movie.
type MovieInput struct {
	Title         string   `json:"title" validate:"required,max=200"`
	IMDbRating    float64  `json:"movieIMDbRating" validate:"gte=0,lte=10"`
	Genres        []string `json:"movieGenres" validate:"required,min=1,dive,required"`
	Directors     []string `json:"directors"`
	MainStars     []string `json:"mainStars"`
	Description   string   `json:"description,omitempty"`
	DatePublished string   `json:"datePublished,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Duration      int      `json:"duration" validate:"gt=0"`
	YearReleased  int      `json:"yearReleased,omitempty" validate:"omitempty,gte=1870,lte=2200"`
}

// Metadata is what the movie metadata proxy knows about a movie.
type Metadata struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Poster   string  `json:"poster,omitempty"`
	Overview string  `json:"overview,omitempty"`
	Rating   float64 `json:"rating,omitempty"`
	Runtime  int     `json:"runtime,omitempty"`
}

// Recommendation is a related movie suggested by the metadata proxy.
type Recommendation struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Poster string  `json:"poster,omitempty"`
	Rating float64 `json:"rating,omitempty"`
}

// Review is a user review of a movie.
type Review struct {
	ID         int64   `json:"id"`
	MovieID    int64   `json:"movieId"`
	UserID     int64   `json:"userId"`
	Title      string  `json:"reviewTitle"`
	Body       string  `json:"reviewBody"`
	Rating     float64 `json:"rating"`
	DatePosted string  `json:"datePosted,omitempty"`
	Flagged    bool    `json:"flagged,omitempty"`
	Likes      int     `json:"likes,omitempty"`
}

// ReviewInput is the body for posting a review.
type ReviewInput struct {
	Title  string  `json:"reviewTitle"`
	Body   string  `json:"reviewBody"`
	Rating float64 `json:"rating"`
}

// FlaggedReview is one entry of the moderation queue. Older backends sent the
// review id in "id", newer ones in "reviewId".
type FlaggedReview struct {
	ID            int64  `json:"id"`
	ReviewID      int64  `json:"reviewId,omitempty"`
	MovieID       int64  `json:"movieId,omitempty"`
	UserID        int64  `json:"userId,omitempty"`
	Content       string `json:"content,omitempty"`
	FlaggedReason string `json:"flaggedReason,omitempty"`
}

// TargetID is the review the flag refers to.
func (f FlaggedReview) TargetID() int64 {
	if f.ReviewID != 0 {
		return f.ReviewID
	}
	return f.ID
}

// FlagQueue is one page of flagged reviews.
type FlagQueue struct {
	Page         int             `json:"page"`
	PageCount    int             `json:"pageCount"`
	TotalFlagged int             `json:"totalFlagged"`
	Reviews      []FlaggedReview `json:"reviews"`
}
