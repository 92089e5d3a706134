package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workboard-api/internal/access"
	apierrors "github.com/yukikurage/workboard-api/internal/errors"
	"github.com/yukikurage/workboard-api/internal/middleware"
	"github.com/yukikurage/workboard-api/internal/services"
)

var errInvalidBody = apierrors.New(apierrors.ErrValidation, "Invalid request body")

// respondData writes the success envelope
func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"data": data})
}

// respondError maps err to its status. Server side failures are logged with
// their cause; the client only sees a generic message.
func respondError(c *gin.Context, log *slog.Logger, err error) {
	_ = c.Error(err)
	if status, _ := apierrors.StatusOf(err); status >= http.StatusInternalServerError {
		log.ErrorContext(c.Request.Context(), "request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
	}
	apierrors.Respond(c, err)
}

// accessOf returns the workspace authorization set by RequireWorkspaceAccess
func accessOf(c *gin.Context, log *slog.Logger) (*access.Context, bool) {
	ac, ok := middleware.AccessContext(c)
	if !ok {
		respondError(c, log, errors.New("workspace access missing from context"))
		return nil, false
	}
	return ac, true
}

// bindJSON decodes the body into req. An empty body leaves req untouched.
func bindJSON(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		return errInvalidBody
	}
	return nil
}

// parseDate accepts RFC 3339 timestamps and plain dates
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, apierrors.Newf(apierrors.ErrValidation, "Invalid date %q", value)
	}
	return t, nil
}

// imageForm is the body of workspace and project create/update requests,
// sent either as JSON or as multipart form with an "image" file.
type imageForm struct {
	Name     *string
	ImageURL *string
	Image    *services.ImageUpload
	close    func()
}

func (f imageForm) Close() {
	if f.close != nil {
		f.close()
	}
}

func bindImageForm(c *gin.Context) (imageForm, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		var req struct {
			Name     *string `json:"name"`
			ImageURL *string `json:"imageUrl"`
		}
		if err := bindJSON(c, &req); err != nil {
			return imageForm{}, err
		}
		return imageForm{Name: req.Name, ImageURL: req.ImageURL}, nil
	}

	var form imageForm
	if name, ok := c.GetPostForm("name"); ok {
		form.Name = &name
	}
	if url, ok := c.GetPostForm("imageUrl"); ok {
		form.ImageURL = &url
	}

	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return form, nil
	}
	if err != nil {
		return imageForm{}, apierrors.New(apierrors.ErrValidation, "Invalid image upload")
	}
	file, err := header.Open()
	if err != nil {
		return imageForm{}, apierrors.New(apierrors.ErrValidation, "Invalid image upload")
	}

	form.Image = &services.ImageUpload{
		Name:        header.Filename,
		Reader:      file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	}
	form.close = func() { _ = file.Close() }
	return form, nil
}
