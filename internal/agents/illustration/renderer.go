package illustration

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"net/url"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/storybook-api/internal/agents/core/config"
	"github.com/Conceptual-Machines/storybook-api/internal/models"
	"github.com/Conceptual-Machines/storybook-api/internal/prompt"
)

// MaxSeed bounds the random seed drawn per illustration
const MaxSeed = 100000

// SeedSource draws a seed in [0, MaxSeed)
type SeedSource func() int

// Renderer turns a scene into a deterministic image-service URL.
// The service renders lazily when the URL is fetched, so Render never does network I/O.
type Renderer struct {
	baseURL string
	model   string
	width   int
	height  int
	style   string
	seed    SeedSource
}

// Option configures a Renderer
type Option func(r *Renderer)

// WithSeedSource replaces the random seed source
func WithSeedSource(src SeedSource) Option {
	return func(r *Renderer) {
		r.seed = src
	}
}

// NewRenderer creates a renderer from the agent configuration
func NewRenderer(cfg *config.Config, loader *prompt.Loader, opts ...Option) (*Renderer, error) {
	style, err := loader.GetIllustrationStyle()
	if err != nil {
		return nil, fmt.Errorf("failed to load illustration style: %w", err)
	}

	r := &Renderer{
		baseURL: cfg.ImageBaseURL,
		model:   cfg.ImageModel,
		width:   cfg.ImageWidth,
		height:  cfg.ImageHeight,
		style:   style,
		seed:    func() int { return rand.IntN(MaxSeed) },
	}
	for _, opt := range opts {
		opt(r)
	}
	if !strings.HasSuffix(r.baseURL, "/") {
		r.baseURL += "/"
	}

	log.Printf("🖼️  ILLUSTRATION RENDERER INITIALIZED: base=%s model=%s size=%dx%d", r.baseURL, r.model, r.width, r.height)
	return r, nil
}

// Render builds the illustration reference for one scene with a fresh seed.
// A blank scene still yields a reference drawn from the subject and style alone.
func (r *Renderer) Render(_ context.Context, subject models.SubjectDescription, scene string) (models.Illustration, error) {
	seed := r.seed()
	text := prompt.BuildIllustrationPrompt(string(subject), scene, r.style)

	query := url.Values{}
	query.Set("width", strconv.Itoa(r.width))
	query.Set("height", strconv.Itoa(r.height))
	query.Set("seed", strconv.Itoa(seed))
	query.Set("nologo", "true")
	query.Set("model", r.model)

	return models.Illustration{
		Reference: r.baseURL + escapeComponent(text) + "?" + query.Encode(),
		Seed:      seed,
	}, nil
}

// escapeComponent percent-encodes the prompt as a single path segment, spaces as %20
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
