package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/Conceptual-Machines/storybook-api/internal/agents/core/coordination"
	"github.com/Conceptual-Machines/storybook-api/internal/api/middleware"
	"github.com/Conceptual-Machines/storybook-api/internal/logger"
	"github.com/Conceptual-Machines/storybook-api/internal/models"
	"github.com/Conceptual-Machines/storybook-api/internal/retry"
	"github.com/gin-gonic/gin"
)

// BooksHandler serves book generation. Each request gets its own orchestrator.
type BooksHandler struct {
	agents         *coordination.Agents
	policy         retry.Policy
	options        []coordination.Option
	maxUploadBytes int64
	stats          *RunStats
}

// BookJSONRequest is the JSON form of a generation request; Image is a base64 data URI
type BookJSONRequest struct {
	Name  string `json:"name"`
	Theme string `json:"theme"`
	Age   string `json:"age"`
	Image string `json:"image"`
}

// BookResponse is returned by a successful synchronous run
type BookResponse struct {
	RequestID string               `json:"request_id"`
	Book      *models.BookArtifact `json:"book"`
	Progress  models.ProgressState `json:"progress"`
}

// ErrorResponse carries a failure and, for run failures, the progress log
type ErrorResponse struct {
	Error    string                `json:"error"`
	Field    string                `json:"field,omitempty"`
	Progress *models.ProgressState `json:"progress,omitempty"`
}

func NewBooksHandler(
	agents *coordination.Agents,
	policy retry.Policy,
	maxUploadMB int,
	stats *RunStats,
	options ...coordination.Option,
) *BooksHandler {
	return &BooksHandler{
		agents:         agents,
		policy:         policy,
		options:        options,
		maxUploadBytes: int64(maxUploadMB) * bytesPerMB,
		stats:          stats,
	}
}

// Create runs the whole pipeline and answers with the finished book
func (h *BooksHandler) Create(c *gin.Context) {
	req, ok := h.decode(c)
	if !ok {
		return
	}

	orch := coordination.NewOrchestrator(h.agents, h.policy, h.options...)
	h.stats.started.Add(1)
	book, err := orch.Run(c.Request.Context(), req)
	progress := orch.Progress().Snapshot()

	if err != nil {
		h.stats.failed.Add(1)
		c.JSON(statusForRunError(err), ErrorResponse{Error: err.Error(), Progress: &progress})
		return
	}

	h.stats.completed.Add(1)
	c.JSON(http.StatusOK, BookResponse{
		RequestID: c.GetString("request_id"),
		Book:      book,
		Progress:  progress,
	})
}

// Stream runs the pipeline and pushes every progress event over SSE,
// followed by a result or error event and a final done event.
func (h *BooksHandler) Stream(c *gin.Context) {
	req, ok := h.decode(c)
	if !ok {
		return
	}

	// Set headers for SSE
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering
	c.Writer.Flush()

	orch := coordination.NewOrchestrator(h.agents, h.policy, h.options...)
	unsubscribe := orch.Progress().Subscribe(func(event models.ProgressEvent) {
		c.SSEvent(eventProgress, event)
		c.Writer.Flush()
	})
	defer unsubscribe()

	h.stats.started.Add(1)
	book, err := orch.Run(c.Request.Context(), req)
	if err != nil {
		h.stats.failed.Add(1)
		progress := orch.Progress().Snapshot()
		c.SSEvent(eventError, ErrorResponse{Error: err.Error(), Progress: &progress})
	} else {
		h.stats.completed.Add(1)
		c.SSEvent(eventResult, BookResponse{
			RequestID: c.GetString("request_id"),
			Book:      book,
			Progress:  orch.Progress().Snapshot(),
		})
	}
	c.SSEvent(eventDone, gin.H{"request_id": c.GetString("request_id")})
	c.Writer.Flush()
}

// decode reads a multipart or JSON body into a validated request, answering 400 on failure
func (h *BooksHandler) decode(c *gin.Context) (*models.GenerationRequest, bool) {
	var (
		req *models.GenerationRequest
		err error
	)
	if limit := h.bodyLimit(); limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		req, err = h.decodeMultipart(c)
	} else {
		req, err = h.decodeJSON(c)
	}
	if err == nil {
		err = req.Validate()
	}

	if err != nil {
		resp := ErrorResponse{Error: err.Error()}
		var vErr *models.ValidationError
		if errors.As(err, &vErr) {
			resp.Field = vErr.Field
		}
		status := http.StatusBadRequest
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
			resp.Error = fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)
		}
		fields := logger.WithContext(c)
		fields["error"] = err.Error()
		fields["field"] = resp.Field
		logger.Warn("Book request rejected", fields)
		c.JSON(status, resp)
		return nil, false
	}

	userID, _ := middleware.GetUserIDFromGateway(c)
	log.Printf("📚 Book request: user=%s theme=%q age=%q image=%s (%d bytes)",
		userID, req.Theme, req.AudienceAge, req.SubjectImage.MIMEType, len(req.SubjectImage.Data))
	return req, true
}

// bodyLimit bounds the request body: the image in base64 plus the text fields
func (h *BooksHandler) bodyLimit() int64 {
	if h.maxUploadBytes <= 0 {
		return 0
	}
	return h.maxUploadBytes*4/3 + bodySlackBytes
}

func (h *BooksHandler) decodeJSON(c *gin.Context) (*models.GenerationRequest, error) {
	var body BookJSONRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}

	req := &models.GenerationRequest{
		SubjectName: strings.TrimSpace(body.Name),
		Theme:       strings.TrimSpace(body.Theme),
		AudienceAge: strings.TrimSpace(body.Age),
	}
	if body.Image == "" {
		return req, nil
	}

	image, err := models.ParseDataURI(body.Image, h.maxUploadBytes)
	if err != nil {
		return nil, err
	}
	req.SubjectImage = image
	return req, nil
}

func (h *BooksHandler) decodeMultipart(c *gin.Context) (*models.GenerationRequest, error) {
	req := &models.GenerationRequest{
		SubjectName: strings.TrimSpace(c.PostForm(formFieldName)),
		Theme:       strings.TrimSpace(c.PostForm(formFieldTheme)),
		AudienceAge: strings.TrimSpace(c.PostForm(formFieldAge)),
	}

	fileHeader, err := c.FormFile(formFieldPhoto)
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid multipart body: %w", err)
	}

	data, err := h.readUpload(fileHeader)
	if err != nil {
		return nil, err
	}
	image, err := models.NewSubjectImage(data, h.maxUploadBytes)
	if err != nil {
		return nil, err
	}
	req.SubjectImage = image
	return req, nil
}

func (h *BooksHandler) readUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		return nil, &models.ValidationError{Field: "image", Err: models.ErrImageTooLarge}
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return data, nil
}

func statusForRunError(err error) int {
	var vErr *models.ValidationError
	var runErr *coordination.RunError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.As(err, &runErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
