package httpserver

import (
	"errors"
	"mime/multipart"
	"net/http"

	"ecofinds-api/internal/domain"
	uploadsvc "ecofinds-api/internal/service/upload"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type uploadHandlers struct {
	svc          uploadService
	logger       *zap.Logger
	maxFileBytes int64
}

type uploadResponse struct {
	Success bool `json:"success"`
	uploadsvc.Stored
}

type multiUploadResponse struct {
	Success bool               `json:"success"`
	Files   []uploadsvc.Stored `json:"files"`
	Count   int                `json:"count"`
}

// limitBody caps the request body at what MaxFiles files of the allowed size
// plus multipart framing can take.
func (h *uploadHandlers) limitBody(c *gin.Context) {
	if h.maxFileBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileBytes*uploadsvc.MaxFiles+1<<20)
	}
}

func (h *uploadHandlers) single(c *gin.Context) {
	h.limitBody(c)
	fh, err := c.FormFile("image")
	if err != nil {
		writeError(c, h.logger, formError(err, uploadsvc.MsgNoFile))
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	defer f.Close()

	stored, err := h.svc.SaveOne(c.Request.Context(), &uploadsvc.File{
		OriginalName: fh.Filename,
		Size:         fh.Size,
		Body:         f,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, uploadResponse{Success: true, Stored: *stored})
}

func (h *uploadHandlers) multiple(c *gin.Context) {
	h.limitBody(c)
	form, err := c.MultipartForm()
	if err != nil {
		writeError(c, h.logger, formError(err, uploadsvc.MsgNoFiles))
		return
	}
	headers := form.File["images"]
	if len(headers) > uploadsvc.MaxFiles {
		writeError(c, h.logger, domain.Validation(uploadsvc.MsgTooManyFiles))
		return
	}

	files := make([]uploadsvc.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		defer f.Close()
		files = append(files, uploadsvc.File{OriginalName: fh.Filename, Size: fh.Size, Body: f})
	}

	stored, err := h.svc.SaveMany(c.Request.Context(), files)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, multiUploadResponse{Success: true, Files: stored, Count: len(stored)})
}

func (h *uploadHandlers) serve(c *gin.Context) {
	rc, obj, err := h.svc.Open(c.Request.Context(), c.Param("filename"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, rc, nil)
}

// formError turns multipart parsing failures into user-facing validation errors.
func formError(err error, missing string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || errors.Is(err, multipart.ErrMessageTooLarge) {
		return domain.Validation(uploadsvc.MsgFileTooLarge)
	}
	return domain.Validation(missing)
}
