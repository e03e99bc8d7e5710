package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	c := NewCatalogFrom(map[string][]string{
		"Mr. Mime": {"galarian"},
		"pikachu":  nil,
	})
	c.Register("mr_mime", "galarian", "kantonian")
	c.Register("  ")

	assert.Equal(t, 2, c.Len())

	forms, ok := c.Forms("MrMime")
	require.True(t, ok)
	assert.Equal(t, []string{"galarian", "kantonian"}, forms)

	forms, ok = c.Forms("Pikachu")
	require.True(t, ok)
	assert.Empty(t, forms)
	assert.NotNil(t, forms)

	_, ok = c.Forms("missingno")
	assert.False(t, ok)
}

func TestCatalogFormsIsACopy(t *testing.T) {
	c := NewCatalog()
	c.Register("vulpix", "alolan")

	forms, _ := c.Forms("vulpix")
	forms[0] = "changed"

	again, _ := c.Forms("vulpix")
	assert.Equal(t, []string{"alolan"}, again)
}
