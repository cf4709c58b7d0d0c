package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Conceptual-Machines/storybook-api/internal/agents/core/coordination"
	"github.com/Conceptual-Machines/storybook-api/internal/agents/narrative"
	"github.com/Conceptual-Machines/storybook-api/internal/agents/subject"
	"github.com/Conceptual-Machines/storybook-api/internal/llm"
	"github.com/Conceptual-Machines/storybook-api/internal/models"
	"github.com/Conceptual-Machines/storybook-api/internal/retry"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

type stubDescriber struct{}

func (stubDescriber) Describe(context.Context, models.SubjectImage) (*subject.Result, error) {
	return &subject.Result{Description: "a smiling boy"}, nil
}

type stubWriter struct {
	err error
}

func (s stubWriter) Generate(context.Context, string, string, string) (*narrative.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	doc := &models.NarrativeDocument{Title: "The Big Day", CoverScene: "cover", EndScene: "end"}
	for i := 1; i <= models.ExpectedPageCount; i++ {
		doc.Pages = append(doc.Pages, models.PageUnit{Text: fmt.Sprintf("page %d", i), SceneDescription: fmt.Sprintf("scene %d", i)})
	}
	return &narrative.Result{Document: doc}, nil
}

type stubRenderer struct{}

func (stubRenderer) Render(_ context.Context, _ models.SubjectDescription, scene string) (models.Illustration, error) {
	return models.Illustration{Reference: "https://img.test/" + scene}, nil
}

func setupBooksRouter(writerErr error) (*gin.Engine, *RunStats) {
	gin.SetMode(gin.TestMode)

	agents := &coordination.Agents{
		Describer: stubDescriber{},
		Writer:    stubWriter{err: writerErr},
		Renderer:  stubRenderer{},
	}
	policy := retry.Policy{
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
		Sleep:       func(context.Context, time.Duration) error { return nil },
	}
	stats := &RunStats{}
	h := NewBooksHandler(agents, policy, 1, stats)

	router := gin.New()
	router.POST("/api/v1/books", h.Create)
	router.POST("/api/v1/books/stream", h.Stream)
	return router, stats
}

func jsonBody(t *testing.T, body BookJSONRequest) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func validJSONRequest() BookJSONRequest {
	return BookJSONRequest{
		Name:  "Avi",
		Theme: "Shabbat Shalom",
		Age:   "Toddler (1-3 years)",
		Image: "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes),
	}
}

func TestCreate_JSON(t *testing.T) {
	router, stats := setupBooksRouter(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/books", jsonBody(t, validJSONRequest()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Book     models.BookArtifact `json:"book"`
		Progress struct {
			Stage   string  `json:"stage"`
			Percent float64 `json:"percent_complete"`
		} `json:"progress"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "The Big Day", resp.Book.Title)
	assert.Len(t, resp.Book.Pages, models.ExpectedPageCount)
	assert.Equal(t, "https://img.test/cover", resp.Book.CoverIllustration.Reference)
	assert.Equal(t, "done", resp.Progress.Stage)
	assert.Equal(t, 100.0, resp.Progress.Percent)
	assert.Equal(t, int64(1), stats.completed.Load())
}

func TestCreate_Multipart(t *testing.T) {
	router, _ := setupBooksRouter(nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField(formFieldName, "Avi"))
	require.NoError(t, mw.WriteField(formFieldTheme, "Purim"))
	require.NoError(t, mw.WriteField(formFieldAge, "Preschool (3-5 years)"))
	part, err := mw.CreateFormFile(formFieldPhoto, "avi.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/books", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestCreate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *BookJSONRequest)
		wantField string
	}{
		{"missing name", func(r *BookJSONRequest) { r.Name = "" }, "name"},
		{"missing theme", func(r *BookJSONRequest) { r.Theme = " " }, "theme"},
		{"missing age", func(r *BookJSONRequest) { r.Age = "" }, "age"},
		{"missing image", func(r *BookJSONRequest) { r.Image = "" }, "image"},
		{"not an image", func(r *BookJSONRequest) {
			r.Image = base64.StdEncoding.EncodeToString([]byte("plain text, definitely not a photo"))
		}, "image"},
		{"bad data uri", func(r *BookJSONRequest) { r.Image = "data:image/png,abc" }, "image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, stats := setupBooksRouter(nil)
			body := validJSONRequest()
			tt.mutate(&body)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/books", jsonBody(t, body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusBadRequest, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantField, resp.Field)
			assert.Nil(t, resp.Progress)
			assert.Zero(t, stats.started.Load())
		})
	}
}

func TestCreate_RejectsOversizedJSONBody(t *testing.T) {
	router, stats := setupBooksRouter(nil)
	body := validJSONRequest()
	body.Image = "data:image/png;base64," + strings.Repeat("A", 2*bytesPerMB)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/books", jsonBody(t, body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "exceeds")
	assert.Zero(t, stats.started.Load())
}

func TestCreate_RunFailure(t *testing.T) {
	router, stats := setupBooksRouter(&llm.TransportError{Provider: "gemini", StatusCode: 503, Err: errors.New("unavailable")})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/books", jsonBody(t, validJSONRequest()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadGateway, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Error, coordination.FailurePrefix))
	require.NotNil(t, resp.Progress)
	assert.Equal(t, models.StageFailed, resp.Progress.Stage)
	assert.Contains(t, resp.Progress.Log, `Writing story about "Shabbat Shalom"...`)
	assert.Equal(t, int64(1), stats.failed.Load())
}

func TestStream_EmitsProgressThenResult(t *testing.T) {
	router, _ := setupBooksRouter(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/books/stream", jsonBody(t, validJSONRequest()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	body := w.Body.String()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	progressAt := strings.Index(body, "event:progress")
	resultAt := strings.Index(body, "event:result")
	doneAt := strings.Index(body, "event:done")
	require.GreaterOrEqual(t, progressAt, 0)
	require.Greater(t, resultAt, progressAt)
	require.Greater(t, doneAt, resultAt)
	assert.NotContains(t, body, "event:error")
	assert.Contains(t, body, "Rendering The End...")
}

func TestStream_EmitsErrorOnFailure(t *testing.T) {
	router, _ := setupBooksRouter(&llm.MalformedResponseError{Provider: "gemini", Err: errors.New("bad json")})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/books/stream", jsonBody(t, validJSONRequest()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	body := w.Body.String()
	assert.Contains(t, body, "event:error")
	assert.Contains(t, body, "event:done")
	assert.NotContains(t, body, "event:result")
}

func TestStream_ValidationAnswersJSON(t *testing.T) {
	router, _ := setupBooksRouter(nil)
	body := validJSONRequest()
	body.Name = ""

	req := httptest.NewRequest(http.MethodPost, "/api/v1/books/stream", jsonBody(t, body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotContains(t, w.Body.String(), "event:")
}
