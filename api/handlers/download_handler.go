package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/ytfile-go/internal/app"
	"github.com/yourusername/ytfile-go/internal/domain"
)

// Submitter is the part of the presenter the download endpoints use
type Submitter interface {
	Submit(req domain.DownloadRequest) bool
	Snapshot() app.ViewState
}

// DownloadHandler handles download submission and state requests
type DownloadHandler struct {
	presenter      Submitter
	defaultSaveDir string
	logger         *zap.Logger
}

// NewDownloadHandler creates a new download handler. Requests without a
// save_dir go to defaultSaveDir.
func NewDownloadHandler(presenter Submitter, defaultSaveDir string, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{
		presenter:      presenter,
		defaultSaveDir: defaultSaveDir,
		logger:         logger,
	}
}

// SubmitRequest represents a request to start a download
type SubmitRequest struct {
	URL     string `json:"url" binding:"required"`
	SaveDir string `json:"save_dir,omitempty"`
	Mode    string `json:"mode,omitempty"`
}

// Submit handles POST /api/v1/downloads
func (h *DownloadHandler) Submit(c *gin.Context) {
	var body SubmitRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode, err := domain.ParseMode(body.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saveDir := body.SaveDir
	if saveDir == "" {
		saveDir = h.defaultSaveDir
	}

	req := domain.NewDownloadRequest(body.URL, saveDir, mode)
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.presenter.Submit(req) {
		c.JSON(http.StatusConflict, gin.H{"error": "a download is already in progress"})
		return
	}

	h.logger.Info("Download submitted",
		zap.String("url", req.URL),
		zap.String("mode", string(req.Mode)),
		zap.String("save_dir", req.SaveDir))

	c.JSON(http.StatusAccepted, gin.H{
		"request": req,
		"state":   h.presenter.Snapshot(),
	})
}

// State handles GET /api/v1/state
func (h *DownloadHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.presenter.Snapshot())
}

// InfoHandler serves video previews
type InfoHandler struct {
	fetcher domain.InfoFetcher
	logger  *zap.Logger
}

// NewInfoHandler creates a new info handler
func NewInfoHandler(fetcher domain.InfoFetcher, logger *zap.Logger) *InfoHandler {
	return &InfoHandler{fetcher: fetcher, logger: logger}
}

// GetInfo handles GET /api/v1/info?url=
func (h *InfoHandler) GetInfo(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'url' is required"})
		return
	}

	info, err := h.fetcher.FetchInfo(c.Request.Context(), url)
	if err != nil {
		h.logger.Warn("Failed to fetch video info", zap.String("url", url), zap.Error(err))
		status := http.StatusBadGateway
		if errors.Is(err, domain.ErrEngineMissing) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": domain.ClassifyError(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"title":         info.Title,
		"channel":       info.Channel,
		"duration":      info.Duration,
		"duration_text": info.DurationText(),
		"thumbnail_url": info.ThumbnailURL,
	})
}
