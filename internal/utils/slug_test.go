package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cubis-academy-api/internal/utils"
)

func TestSlugify(t *testing.T) {
	require.Equal(t, "go-fundamentals-2024", utils.Slugify("  Go Fundamentals -- 2024! "))
	require.Equal(t, "data-science", utils.Slugify("Data & Science"))
	require.Equal(t, "", utils.Slugify("!!!"))
}
