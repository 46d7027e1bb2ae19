package document

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/counsellive/voice-backend/internal/dto"
	"github.com/counsellive/voice-backend/internal/shared"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	store     *Store
	uploadDir string
	logger    *slog.Logger
}

func NewHandler(store *Store, uploadDir string, logger *slog.Logger) *Handler {
	return &Handler{
		store:     store,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Upload)
	g.DELETE("", h.Clear)
}

// @Summary      Upload a report
// @Description  Extracts the text of a PDF report and makes it available to the next live session's instructions
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        pdf  formData  file  true  "PDF report"
// @Success      200  {object}  dto.UploadResponse
// @Failure      400  {object}  shared.APIError
// @Failure      500  {object}  shared.APIError
// @Router       /documents [post]
func (h *Handler) Upload(c echo.Context) error {
	file, err := c.FormFile("pdf")
	if err != nil {
		return shared.BadRequest("missing_file", "no PDF file uploaded")
	}

	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		return shared.BadRequest("invalid_file", "only PDF files are allowed")
	}

	src, err := file.Open()
	if err != nil {
		return shared.InternalError("open_failed", "failed to open uploaded file")
	}
	defer src.Close()

	tmp, err := os.CreateTemp(h.uploadDir, "upload-*.pdf")
	if err != nil {
		h.logger.Error("temp file creation failed", "error", err)
		return shared.InternalError("store_failed", "failed to store uploaded file")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		h.logger.Error("upload write failed", "error", err)
		return shared.InternalError("store_failed", "failed to store uploaded file")
	}
	tmp.Close()

	text, err := ExtractText(tmpPath)
	if err != nil {
		h.logger.Error("pdf extraction failed", "file", file.Filename, "error", err)
		return shared.BadRequest("parse_failed", "failed to extract text from PDF")
	}

	h.store.Set(text)
	h.logger.Info("report uploaded", "file", file.Filename, "context_length", len(text))

	return c.JSON(http.StatusOK, dto.UploadResponse{
		Success:       true,
		Message:       "PDF uploaded and processed successfully",
		ContextLength: len(text),
	})
}

// @Summary      Clear the uploaded report
// @Tags         documents
// @Success      204  "No Content"
// @Router       /documents [delete]
func (h *Handler) Clear(c echo.Context) error {
	h.store.Clear()
	return c.NoContent(http.StatusNoContent)
}
