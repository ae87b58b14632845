package photo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"geoimages/internal/pkg/coord"
	"geoimages/internal/pkg/response"
	"geoimages/internal/pkg/validator"
)

// Handler exposes the image service over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Upload stores every file of the multipart "files" field. Processing stops
// at the first failing file; files accepted before it are kept and their
// signatures are reported in the error details.
func (h *Handler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_FORM", "failed to parse multipart form")
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		response.Error(c, http.StatusBadRequest, "NO_FILES", "no files provided")
		return
	}

	signatures := make([]string, 0, len(files))
	for _, fh := range files {
		sig, err := h.ingestFile(c.Request.Context(), fh)
		if err != nil {
			status, code := statusFor(err)
			_ = c.Error(err)
			response.ErrorWithDetails(c, status, code, fmt.Sprintf("%s: %v", fh.Filename, err), gin.H{
				"signatures": signatures,
			})
			return
		}
		signatures = append(signatures, sig)
	}

	c.JSON(http.StatusCreated, UploadResponse{
		Message:    "Files successfully uploaded",
		Signatures: signatures,
	})
}

func (h *Handler) ingestFile(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	limit := h.service.MaxFileSize()
	if fh.Size > limit {
		return "", ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	sig, _, err := h.service.Ingest(ctx, data, fh.Filename)
	return sig, err
}

// Get streams the stored image; any non-empty is_thumbnail returns the
// thumbnail instead, generating it on first request.
func (h *Handler) Get(c *gin.Context) {
	signature := c.Param("signature")
	thumbnail := c.Query("is_thumbnail") != ""

	f, err := h.service.Open(c.Request.Context(), signature, thumbnail)
	if err != nil {
		status, code := statusFor(err)
		if errors.Is(err, ErrMissingBackingFile) {
			status = http.StatusNotFound
		}
		if status == http.StatusNotFound {
			response.Error(c, status, code, fmt.Sprintf("Image with signature: %s not found!", signature))
			return
		}
		if status < http.StatusInternalServerError {
			response.Error(c, status, code, err.Error())
			return
		}
		_ = c.Error(err)
		response.Error(c, status, code, "failed to open image")
		return
	}
	defer f.Close()

	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, f.Name),
	}
	if !thumbnail && f.Record.Checksum != "" {
		headers["ETag"] = strconv.Quote(f.Record.Checksum)
	}
	c.DataFromReader(http.StatusOK, f.Size, "image/jpeg", f, headers)
}

// Delete removes the image and its index record. Unknown signatures succeed;
// malformed ones are rejected.
func (h *Handler) Delete(c *gin.Context) {
	signature := c.Param("signature")

	if err := h.service.Delete(c.Request.Context(), signature); err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			status, code := statusFor(err)
			response.Error(c, status, code, err.Error())
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "DELETE_FAILED", fmt.Sprintf("Failed to delete file: %s", signature))
		return
	}

	response.Message(c, http.StatusOK, fmt.Sprintf("File %s deleted!", signature), nil)
}

// Query answers a bounding-box search with a zip of the matching images.
func (h *Handler) Query(c *gin.Context) {
	var q GeoQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if errs := validator.Validate(q); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid query parameters", errs)
		return
	}

	box, err := ParseBoundingBox(q.MinLat, q.MinLon, q.MaxLat, q.MaxLon, q.LatRef, q.LonRef)
	if err != nil {
		status, code := statusFor(err)
		response.Error(c, status, code, err.Error())
		return
	}

	data, n, err := h.service.Archive(c.Request.Context(), box)
	if err != nil {
		_ = c.Error(err)
		status, code := statusFor(err)
		var missing *MissingBackingFileError
		if errors.As(err, &missing) {
			response.ErrorWithDetails(c, status, code, err.Error(), gin.H{"signature": missing.Signature})
			return
		}
		response.Error(c, status, code, "failed to build archive")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.zip"`, ArchiveDir))
	c.Header("X-Archive-Count", strconv.Itoa(n))
	c.Data(http.StatusOK, "application/x-zip-compressed", data)
}

// Health reports liveness and the index size.
func (h *Handler) Health(c *gin.Context) {
	n, err := h.service.Count(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "index database unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "images": n})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidImage):
		return http.StatusBadRequest, "INVALID_IMAGE"
	case errors.Is(err, ErrEmptyFile):
		return http.StatusBadRequest, "EMPTY_FILE"
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"
	case errors.Is(err, coord.ErrMissingTimestamp):
		return http.StatusBadRequest, "MISSING_TIMESTAMP"
	case errors.Is(err, coord.ErrMalformedTimestamp):
		return http.StatusBadRequest, "MALFORMED_TIMESTAMP"
	case errors.Is(err, ErrInvalidSignature):
		return http.StatusBadRequest, "INVALID_SIGNATURE"
	case errors.Is(err, coord.ErrMalformedGPSData):
		return http.StatusBadRequest, "MALFORMED_GPS_DATA"
	case errors.Is(err, coord.ErrInvalidCoordinateFormat):
		return http.StatusBadRequest, "INVALID_COORDINATE_FORMAT"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, ErrMissingBackingFile):
		return http.StatusInternalServerError, "MISSING_BACKING_FILE"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
