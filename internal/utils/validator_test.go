package utils_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cubis-academy-api/internal/utils"
)

func TestNewValidatorReportsJSONFieldNames(t *testing.T) {
	type payload struct {
		CourseID uint   `json:"course_id,omitempty" validate:"required"`
		Note     string `validate:"required"`
	}

	err := utils.NewValidator().Struct(payload{})
	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
	require.Len(t, validationErrors, 2)
	require.Equal(t, "course_id", validationErrors[0].Field())
	require.Equal(t, "Note", validationErrors[1].Field())
}
