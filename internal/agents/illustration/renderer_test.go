package illustration

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/Conceptual-Machines/storybook-api/internal/agents/core/config"
	"github.com/Conceptual-Machines/storybook-api/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		ImageBaseURL: "https://pollinations.ai/p/",
		ImageModel:   "flux",
		ImageWidth:   1024,
		ImageHeight:  1024,
	}
}

func sequenceSeeds(seeds ...int) SeedSource {
	i := 0
	return func() int {
		s := seeds[i%len(seeds)]
		i++
		return s
	}
}

func TestRender_BuildsReference(t *testing.T) {
	r, err := NewRenderer(testConfig(), prompt.NewPromptLoader(), WithSeedSource(sequenceSeeds(42)))
	require.NoError(t, err)

	ill, err := r.Render(context.Background(), "a boy with red hair", "lighting candles")
	require.NoError(t, err)
	assert.Equal(t, 42, ill.Seed)

	u, err := url.Parse(ill.Reference)
	require.NoError(t, err)
	assert.Equal(t, "pollinations.ai", u.Host)
	assert.True(t, strings.HasPrefix(u.Path, "/p/Make a boy with red hair, lighting candles, "))
	assert.NotContains(t, ill.Reference, "+")

	q := u.Query()
	assert.Equal(t, "1024", q.Get("width"))
	assert.Equal(t, "1024", q.Get("height"))
	assert.Equal(t, "42", q.Get("seed"))
	assert.Equal(t, "true", q.Get("nologo"))
	assert.Equal(t, "flux", q.Get("model"))
}

func TestRender_OnlySeedDiffersBetweenCalls(t *testing.T) {
	r, err := NewRenderer(testConfig(), prompt.NewPromptLoader(), WithSeedSource(sequenceSeeds(1, 2)))
	require.NoError(t, err)

	first, err := r.Render(context.Background(), "a girl", "in the garden")
	require.NoError(t, err)
	second, err := r.Render(context.Background(), "a girl", "in the garden")
	require.NoError(t, err)

	assert.NotEqual(t, first.Reference, second.Reference)
	assert.Equal(t,
		strings.Replace(first.Reference, "seed=1", "seed=2", 1),
		second.Reference)
}

func TestRender_DefaultSeedInRange(t *testing.T) {
	r, err := NewRenderer(testConfig(), prompt.NewPromptLoader())
	require.NoError(t, err)

	for range 50 {
		ill, err := r.Render(context.Background(), "a dog", "running")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, ill.Seed, 0)
		assert.Less(t, ill.Seed, MaxSeed)
	}
}

func TestRender_BlankSceneStillRenders(t *testing.T) {
	r, err := NewRenderer(testConfig(), prompt.NewPromptLoader())
	require.NoError(t, err)

	ill, err := r.Render(context.Background(), "a dog", "  ")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ill.Reference, "https://"), ill.Reference)
	assert.Contains(t, ill.Reference, "a%20dog")
}

func TestEscapeComponent(t *testing.T) {
	assert.Equal(t, "a%20b%2C%20c%2Fd", escapeComponent("a b, c/d"))
}
