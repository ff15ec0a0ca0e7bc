package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/regional-streaming/internal/middleware"
	"github.com/iliyamo/regional-streaming/internal/service"
)

// defaultUploadTimeout bounds copying media to the store plus the insert.
const defaultUploadTimeout = 10 * time.Minute

// CreatorHandler accepts video uploads. MaxUploadBytes caps the whole
// multipart body; UploadTimeout replaces the usual request deadline.
type CreatorHandler struct {
	Approval       service.ApprovalService
	MaxUploadBytes int64
	UploadTimeout  time.Duration
	Log            zerolog.Logger
}

func NewCreatorHandler(approval service.ApprovalService, maxUploadMB int64, log zerolog.Logger) *CreatorHandler {
	return &CreatorHandler{
		Approval:       approval,
		MaxUploadBytes: maxUploadMB << 20,
		UploadTimeout:  defaultUploadTimeout,
		Log:            log,
	}
}

// Upload stores the video and thumbnail and files the video for
// moderation. Form fields: title, description, category, language,
// releaseYear, ageRating, isPremium, tags (comma separated), duration,
// and the files video and thumbnail.
func (h *CreatorHandler) Upload(c echo.Context) error {
	req := c.Request()
	if h.MaxUploadBytes > 0 {
		req.Body = http.MaxBytesReader(c.Response(), req.Body, h.MaxUploadBytes)
	}
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "upload too large"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid multipart form"})
	}
	defer form.RemoveAll()

	in := service.SubmitVideoInput{
		CreatorID:   middleware.UserID(c),
		Title:       formValue(form, "title"),
		Description: formValue(form, "description"),
		Category:    formValue(form, "category"),
		Language:    formValue(form, "language"),
		AgeRating:   formValue(form, "ageRating"),
		IsPremium:   formValue(form, "isPremium") == "true",
		Tags:        splitTags(formValue(form, "tags")),
	}
	if v := formValue(form, "releaseYear"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "releaseYear must be a number"})
		}
		in.ReleaseYear = &year
	}
	if v := formValue(form, "duration"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "duration must be a number"})
		}
		in.Duration = d
	}

	video, closeVideo, err := openMedia(form, "video")
	if err != nil {
		return respondError(c, h.Log, err)
	}
	defer closeVideo()
	thumb, closeThumb, err := openMedia(form, "thumbnail")
	if err != nil {
		return respondError(c, h.Log, err)
	}
	defer closeThumb()
	in.Video, in.Thumbnail = video, thumb

	timeout := h.UploadTimeout
	if timeout <= 0 {
		timeout = defaultUploadTimeout
	}
	ctx, cancel := context.WithTimeout(req.Context(), timeout)
	defer cancel()

	v, err := h.Approval.Submit(ctx, in)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"video": echo.Map{
			"id":     v.ID,
			"title":  v.Title,
			"status": "processing",
		},
		"message": "Video uploaded successfully! It will be available after admin approval.",
	})
}

func formValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}

func splitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// openMedia opens the named file part. A missing part yields nil media so
// the required-field check reports it.
func openMedia(form *multipart.Form, field string) (*service.Media, func(), error) {
	files := form.File[field]
	if len(files) == 0 {
		return nil, func() {}, nil
	}
	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &service.Media{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
