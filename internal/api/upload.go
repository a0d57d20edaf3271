package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"autolynx-portal/internal/webhook"
	"autolynx-portal/pkg/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	uploadErrorPrefix   = "Error uploading CSV file. "
	uploadPendingFormat = "%s was received and is still being processed. Check the Dashboard for progress."
	maxUploadBytes      = 10 << 20
)

type CSVUploader interface {
	UploadCSV(ctx context.Context, url, filename string, r io.Reader) (*webhook.Result, error)
}

type UploadHandler struct {
	Webhook  CSVUploader
	Settings WebhookSettings
	Logger   *zap.Logger
}

func NewUploadHandler(client CSVUploader, cfg WebhookSettings, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{Webhook: client, Settings: cfg, Logger: logger}
}

// UploadCSV forwards a single contact file to the CSV upload webhook.
func (h *UploadHandler) UploadCSV(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": uploadErrorPrefix + "A file is required."})
		return
	}
	defer file.Close()

	if form := c.Request.MultipartForm; form != nil && len(form.File["file"]) > 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": uploadErrorPrefix + "Please upload one file at a time."})
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".csv" && ext != ".txt" {
		c.JSON(http.StatusBadRequest, gin.H{"error": uploadErrorPrefix + "Only .csv and .txt files are supported."})
		return
	}

	ctx := c.Request.Context()
	url := h.Settings.WebhookConfig(ctx).CSVUploadWebhookURL
	res, err := h.Webhook.UploadCSV(ctx, url, header.Filename, file)
	switch {
	case err == nil:
		h.Logger.Info("csv uploaded", zap.String("filename", header.Filename), zap.Int64("size", header.Size))
		c.JSON(http.StatusOK, models.UploadResponse{Message: uploadMessage(res, header.Filename), Filename: header.Filename})
	case webhook.IsTimeout(err):
		h.Logger.Info("csv upload timed out, assuming background processing", zap.String("filename", header.Filename))
		c.JSON(http.StatusAccepted, models.UploadResponse{
			Message:  fmt.Sprintf(uploadPendingFormat, header.Filename),
			Filename: header.Filename,
			Pending:  true,
		})
	default:
		h.Logger.Error("csv upload failed", zap.String("filename", header.Filename), zap.Error(err))
		c.JSON(uploadErrorStatus(err), gin.H{"error": uploadErrorPrefix + uploadErrorDetail(err)})
	}
}

// uploadMessage prefers the message field of the webhook's answer.
func uploadMessage(res *webhook.Result, filename string) string {
	if body, ok := res.Body.(map[string]any); ok {
		if msg, ok := body["message"].(string); ok && strings.TrimSpace(msg) != "" {
			return msg
		}
	}
	return fmt.Sprintf("CSV uploaded successfully! Campaign has been started with %s.", filename)
}

func uploadErrorDetail(err error) string {
	var statusErr *webhook.StatusError
	switch {
	case errors.Is(err, webhook.ErrNotConfigured):
		return "The CSV upload webhook is not configured. Add its URL on the Settings page."
	case errors.As(err, &statusErr):
		if statusErr.Message != "" {
			return statusErr.Message
		}
		return fmt.Sprintf("Upload failed with status %d", statusErr.Code)
	case errors.Is(err, webhook.ErrMalformedResponse):
		return "The server returned an unreadable response. Please try again."
	default:
		return "Unable to connect to the server. Please check your internet connection or try again later."
	}
}

func uploadErrorStatus(err error) int {
	if errors.Is(err, webhook.ErrNotConfigured) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}
