package models

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough of a PNG for MIME sniffing
var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

func validRequest(t *testing.T) GenerationRequest {
	t.Helper()
	img, err := NewSubjectImage(pngHeader, 0)
	require.NoError(t, err)
	return GenerationRequest{
		SubjectName:  "Avi",
		Theme:        "Shabbat Shalom",
		AudienceAge:  "Toddler (1-3 years)",
		SubjectImage: img,
	}
}

func TestGenerationRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *GenerationRequest)
		wantField string
	}{
		{"valid", func(_ *GenerationRequest) {}, ""},
		{"missing name", func(r *GenerationRequest) { r.SubjectName = "  " }, "name"},
		{"missing theme", func(r *GenerationRequest) { r.Theme = "" }, "theme"},
		{"missing age", func(r *GenerationRequest) { r.AudienceAge = "" }, "age"},
		{"missing image", func(r *GenerationRequest) { r.SubjectImage = SubjectImage{} }, "image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest(t)
			tt.mutate(&req)

			err := req.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestNewSubjectImage(t *testing.T) {
	img, err := NewSubjectImage(pngHeader, 0)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)

	_, err = NewSubjectImage([]byte("just some text, not a picture"), 0)
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = NewSubjectImage(pngHeader, 4)
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestParseDataURI(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(pngHeader)

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"data uri", "data:image/png;base64," + encoded, nil},
		{"bare base64", encoded, nil},
		{"declared type ignored", "data:image/jpeg;base64," + encoded, nil},
		{"not base64 encoded", "data:image/png," + encoded, ErrInvalidDataURI},
		{"garbage payload", "data:image/png;base64,%%%", ErrInvalidDataURI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := ParseDataURI(tt.input, 0)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "image/png", img.MIMEType)
			assert.Equal(t, pngHeader, img.Data)
		})
	}
}

func TestStage_JSON(t *testing.T) {
	data, err := json.Marshal(ProgressEvent{Stage: StageRendering, Percent: 30})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"stage":"rendering"`)
	var decoded ProgressEvent
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, StageRendering, decoded.Stage)
	assert.Error(t, json.Unmarshal([]byte(`"sleeping"`), &decoded.Stage))

	assert.True(t, StageFailed.IsTerminal())
	assert.False(t, StageRendering.IsTerminal())
}

func TestBookArtifact_CloneIsIndependent(t *testing.T) {
	book := &BookArtifact{Title: "T", Pages: []BookPage{{Text: "one"}}}
	clone := book.Clone()
	clone.Pages[0].Text = "changed"
	assert.Equal(t, "one", book.Pages[0].Text)
}

func TestThemeCatalog_Category(t *testing.T) {
	catalog := &ThemeCatalog{Categories: []ThemeCategory{{Name: "Holidays", Themes: []string{"Purim"}}}}

	category, ok := catalog.Category("holidays")
	require.True(t, ok)
	assert.Equal(t, []string{"Purim"}, category.Themes)
	assert.Equal(t, "Purim", catalog.DefaultTheme())

	_, ok = catalog.Category("missing")
	assert.False(t, ok)
}
