package validx

import (
	"errors"
	"testing"

	"github.com/dmitrijs2005/gophprovider/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Note     string `json:"note,omitempty" validate:"max=3"`
}

func TestStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, Struct(credentials{Email: "a@b.co", Password: "x"}))
	})

	t.Run("field errors use json names", func(t *testing.T) {
		err := Struct(credentials{Email: "nope", Note: "toolong"})
		require.ErrorIs(t, err, common.ErrValidation)

		var ve *common.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, map[string][]string{
			"email":    {"must be a valid email address"},
			"password": {"is required"},
			"note":     {"must be at most 3 characters"},
		}, ve.Fields)
	})

	t.Run("not a struct", func(t *testing.T) {
		err := Struct(42)
		require.Error(t, err)
		assert.NotErrorIs(t, err, common.ErrValidation)
	})
}

func TestVar(t *testing.T) {
	ve := common.NewValidationError()

	Var(ve, "id", "not-a-uuid", "uuid")
	Var(ve, "email", "a@b.co", "required,email")

	assert.Equal(t, map[string][]string{"id": {"must be a valid UUID"}}, ve.Fields)
}
