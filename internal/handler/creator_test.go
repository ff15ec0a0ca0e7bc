package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/regional-streaming/internal/handler"
	"github.com/iliyamo/regional-streaming/internal/model"
	"github.com/iliyamo/regional-streaming/internal/service"
)

// deadlineApproval records the deadline Submit was called with.
type deadlineApproval struct {
	service.ApprovalService
	deadline time.Time
	ok       bool
}

func (a *deadlineApproval) Submit(ctx context.Context, in service.SubmitVideoInput) (model.Video, error) {
	a.deadline, a.ok = ctx.Deadline()
	return model.Video{ID: "v1", Title: in.Title}, nil
}

func TestUploadUsesItsOwnDeadline(t *testing.T) {
	stub := &deadlineApproval{}
	h := handler.NewCreatorHandler(stub, 8, zerolog.Nop())
	h.UploadTimeout = time.Hour

	ct, body := uploadForm(t, map[string]string{
		"title": "Hul Diwas", "description": "D", "category": "CULTURE", "language": "SANTALI",
	}, true)
	req := httptest.NewRequest(http.MethodPost, "/api/creator/upload", body)
	req.Header.Set(echo.HeaderContentType, ct)
	rec := httptest.NewRecorder()

	start := time.Now()
	require.NoError(t, h.Upload(echo.New().NewContext(req, rec)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.True(t, stub.ok)
	assert.True(t, stub.deadline.After(start.Add(59*time.Minute)), "deadline %v", stub.deadline)
}
