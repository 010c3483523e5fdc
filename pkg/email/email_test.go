package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "assistflow/pkg/domain-errors"
)

func TestParse(t *testing.T) {
	t.Run("normalises case and whitespace", func(t *testing.T) {
		got, err := Parse("  Jane.Doe@Example.COM ")
		require.NoError(t, err)
		assert.Equal(t, "jane.doe@example.com", got)
	})

	invalid := map[string]string{
		"empty":         "   ",
		"no at":         "jane.example.com",
		"display name":  "Jane <jane@example.com>",
		"colon":         "ja:ne@example.com",
		"no tld":        "jane@localhost",
		"inner space":   "jane doe@example.com",
		"missing local": "@example.com",
	}
	for name, input := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(input)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}
