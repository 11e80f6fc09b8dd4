package errors

import (
	"fmt"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderDefaults(t *testing.T) {
	ee := New(fmt.Errorf("boom")).Build()

	require.NotNil(t, ee, "expected non-nil error")
	assert.Equal(t, ComponentUnknown, ee.Component, "expected unknown component")
	assert.Equal(t, CategoryGeneric, ee.Category, "expected generic category")
	assert.Equal(t, "boom", ee.Error(), "expected original message")
	assert.WithinDuration(t, time.Now(), ee.Timestamp, time.Second, "expected recent timestamp")
}

func TestBuilderMetadata(t *testing.T) {
	ee := Newf("image %s missing", "Z01/x.jpg").
		Component("pipeline").
		Category(CategoryNotFound).
		Context("zone", "Z01").
		Build()

	assert.Equal(t, "pipeline", ee.Component)
	assert.Equal(t, CategoryNotFound, ee.Category)
	assert.Equal(t, "Z01", ee.Context["zone"])
}

func TestIsNotFound(t *testing.T) {
	nf := New(fs.ErrNotExist).Category(CategoryNotFound).Build()
	assert.True(t, IsNotFound(nf), "not-found category should be detected")

	wrapped := fmt.Errorf("stage 2 skipped: %w", nf)
	assert.True(t, IsNotFound(wrapped), "detection should survive wrapping")

	other := New(fmt.Errorf("db down")).Category(CategoryDatabase).Build()
	assert.False(t, IsNotFound(other), "other categories are not not-found")
	assert.False(t, IsNotFound(nil), "nil is not not-found")
}

func TestUnwrapAndIs(t *testing.T) {
	base := fs.ErrNotExist
	ee := New(fmt.Errorf("lookup: %w", base)).Category(CategoryImageLookup).Build()

	assert.True(t, Is(ee, fs.ErrNotExist), "wrapped sentinel should match")
	assert.Equal(t, CategoryImageLookup, CategoryOf(ee))
	assert.Equal(t, CategoryGeneric, CategoryOf(fmt.Errorf("plain")))
}
