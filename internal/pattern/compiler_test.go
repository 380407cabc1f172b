package pattern

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompiler_ReturnsSamePointer(t *testing.T) {
	t.Parallel()

	c := NewCompiler()

	first, err := c.Compile("/users/:id", Options{End: true})
	require.NoError(t, err)
	second, err := c.Compile("/users/:id", Options{End: true})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, c.Len())
}

func TestCompiler_KeyIncludesOptions(t *testing.T) {
	t.Parallel()

	c := NewCompiler()

	exact := c.MustCompile("/users", Options{End: true})
	prefix := c.MustCompile("/users", Options{})

	assert.NotSame(t, exact, prefix)
	assert.Equal(t, 2, c.Len())

	_, ok := exact.Exec("/users/42")
	assert.False(t, ok)
	_, ok = prefix.Exec("/users/42")
	assert.True(t, ok)
}

func TestCompiler_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	c := NewCompiler()

	_, err := c.Compile("/:", Options{})
	require.ErrorIs(t, err, ErrPatternSyntax)
	assert.Equal(t, 0, c.Len())

	assert.Panics(t, func() { c.MustCompile("/(", Options{}) })
}

func TestCompiler_Reset(t *testing.T) {
	t.Parallel()

	c := NewCompiler()
	first := c.MustCompile("/a", Options{})
	c.MustCompile("/b", Options{})
	require.Equal(t, 2, c.Len())

	c.Reset()
	assert.Equal(t, 0, c.Len())

	again := c.MustCompile("/a", Options{})
	assert.NotSame(t, first, again)
}

func TestCompiler_InstancesAreIndependent(t *testing.T) {
	t.Parallel()

	a := NewCompiler()
	b := NewCompiler()

	a.MustCompile("/x", Options{})
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 0, b.Len())
}

func TestCompiler_Concurrent(t *testing.T) {
	t.Parallel()

	c := NewCompiler()
	const workers = 32

	results := make([]*CompiledPattern, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.MustCompile("/users/:id", Options{End: true})
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Same(t, results[0], r)
	}
	assert.Equal(t, 1, c.Len())
}
