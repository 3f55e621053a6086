package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username string   `json:"username" validate:"required,min=3,max=32"`
	Email    string   `json:"email" validate:"required,email"`
	Age      int      `json:"age" validate:"gte=13"`
	Genres   []string `json:"genres" validate:"min=1"`
	Password string   `json:"-" validate:"required"`
	Confirm  string   `validate:"eqfield=Password"`
}

func TestStruct(t *testing.T) {
	err := Struct(signup{Username: "ab", Email: "nope", Age: 9, Password: "x", Confirm: "y"})
	var verr *Error
	require.True(t, errors.As(err, &verr))

	assert.Equal(t, "must be at least 3 characters", verr.Message("username"))
	assert.Equal(t, "must be a valid email address", verr.Message("email"))
	assert.Equal(t, "must be at least 13", verr.Message("age"))
	assert.Equal(t, "must have at least 1 entries", verr.Message("genres"))
	assert.Equal(t, "does not match", verr.Message("Confirm"))
	assert.Empty(t, verr.Message("password"))
	assert.Contains(t, verr.Error(), "username must be at least 3 characters")
}

func TestStructValid(t *testing.T) {
	assert.NoError(t, Struct(signup{
		Username: "ann",
		Email:    "ann@example.com",
		Age:      30,
		Genres:   []string{"drama"},
		Password: "secret",
		Confirm:  "secret",
	}))
}
