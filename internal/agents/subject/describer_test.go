package subject

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Conceptual-Machines/storybook-api/internal/agents/core/config"
	"github.com/Conceptual-Machines/storybook-api/internal/llm"
	"github.com/Conceptual-Machines/storybook-api/internal/models"
	"github.com/Conceptual-Machines/storybook-api/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	text    string
	err     error
	request *llm.GenerationRequest
}

func (s *stubProvider) Generate(_ context.Context, request *llm.GenerationRequest) (*llm.GenerationResponse, error) {
	s.request = request
	if s.err != nil {
		return nil, s.err
	}
	return &llm.GenerationResponse{Text: s.text, Usage: llm.Usage{TotalTokens: 12}}, nil
}

func (s *stubProvider) Name() string { return "stub" }

func newDescriber(t *testing.T, provider llm.Provider) *Describer {
	t.Helper()
	d, err := NewDescriberWithProvider(&config.Config{VisionModel: "gemini-test"}, provider, prompt.NewPromptLoader())
	require.NoError(t, err)
	return d
}

func TestDescribe_SendsImageInline(t *testing.T) {
	provider := &stubProvider{text: "a boy with curly red hair and round glasses"}
	d := newDescriber(t, provider)

	image := models.SubjectImage{Data: []byte{1, 2, 3}, MIMEType: "image/jpeg"}
	result, err := d.Describe(context.Background(), image)
	require.NoError(t, err)

	assert.Equal(t, models.SubjectDescription("a boy with curly red hair and round glasses"), result.Description)
	assert.False(t, result.Fallback)
	require.Len(t, provider.request.Images, 1)
	assert.Equal(t, "image/jpeg", provider.request.Images[0].MIMEType)
	assert.Equal(t, "gemini-test", provider.request.Model)
	assert.NotEmpty(t, provider.request.UserPrompt)
}

func TestDescribe_StripsPreamble(t *testing.T) {
	d := newDescriber(t, &stubProvider{text: "Here is a description of the child: a girl in a yellow raincoat"})

	result, err := d.Describe(context.Background(), models.SubjectImage{Data: []byte{1}, MIMEType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, models.SubjectDescription("a girl in a yellow raincoat"), result.Description)
}

func TestDescribe_EmptyResultFallsBack(t *testing.T) {
	tests := []struct {
		name     string
		provider *stubProvider
	}{
		{"empty result error", &stubProvider{err: fmt.Errorf("no candidates: %w", llm.ErrEmptyResult)}},
		{"blank text", &stubProvider{text: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDescriber(t, tt.provider)
			result, err := d.Describe(context.Background(), models.SubjectImage{Data: []byte{1}, MIMEType: "image/png"})
			require.NoError(t, err)
			assert.True(t, result.Fallback)
			assert.Equal(t, FallbackDescription, result.Description)
		})
	}
}

func TestDescribe_TransportErrorPropagates(t *testing.T) {
	upstream := &llm.TransportError{Provider: "stub", StatusCode: 503, Err: errors.New("unavailable")}
	d := newDescriber(t, &stubProvider{err: upstream})

	_, err := d.Describe(context.Background(), models.SubjectImage{Data: []byte{1}, MIMEType: "image/png"})

	var transportErr *llm.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, 503, transportErr.StatusCode)
}
