package rest

import (
	"errors"
	"net/http"
	"os"
	"path"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"palmr-api/internal/application/ports"
	"palmr-api/internal/application/services"
	"palmr-api/internal/domain/file_token"
	"palmr-api/internal/infrastructure/filesystem"
	"palmr-api/pkg/filename"
)

// FilesystemController serves the token-gated URLs handed out by the
// filesystem storage provider. The token is the only credential.
type FilesystemController struct {
	tokenService ports.FileTokenService
	files        ports.ObjectFiles
	maxFileSize  int64
	logger       *zap.Logger
}

func NewFilesystemController(
	r *gin.Engine,
	tokenService ports.FileTokenService,
	files ports.ObjectFiles,
	maxFileSize int64,
	logger *zap.Logger,
) *FilesystemController {
	fc := &FilesystemController{
		tokenService: tokenService,
		files:        files,
		maxFileSize:  maxFileSize,
		logger:       logger,
	}

	r.GET(RouteFilesystemDownload, fc.DownloadHandler)
	r.HEAD(RouteFilesystemDownload, fc.DownloadHandler)
	r.PUT(RouteFilesystemUpload, fc.UploadHandler)

	return fc
}

func (fc *FilesystemController) DownloadHandler(c *gin.Context) {
	t, err := fc.tokenService.Resolve(c.Request.Context(), file_token.KindDownload, c.Param("token"))
	if err != nil {
		respondError(c, fc.logger, "Resolve()", err, "failed to resolve link")
		return
	}

	f, err := fc.files.Open(t.ObjectName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, filesystem.ErrInvalidObjectName) {
			respondError(c, fc.logger, "Open()", services.ErrTokenNotFound, "")
			return
		}
		respondError(c, fc.logger, "Open()", err, "failed to read file")
		return
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		respondError(c, fc.logger, "Stat()", err, "failed to read file")
		return
	}

	name := t.FileName
	if name == "" {
		name = path.Base(t.ObjectName)
	}
	c.Header("Content-Type", filename.ContentType(name))
	c.Header("Content-Disposition", filename.ContentDisposition("inline", name))
	c.Header("Cache-Control", "private, no-store")

	http.ServeContent(c.Writer, c.Request, name, st.ModTime(), f)
}

func (fc *FilesystemController) UploadHandler(c *gin.Context) {
	t, err := fc.tokenService.Resolve(c.Request.Context(), file_token.KindUpload, c.Param("token"))
	if err != nil {
		respondError(c, fc.logger, "Resolve()", err, "failed to resolve link")
		return
	}

	if fc.maxFileSize > 0 && c.Request.ContentLength > fc.maxFileSize {
		respondError(c, fc.logger, "Upload", services.ErrFileTooLarge, "")
		return
	}

	body := c.Request.Body
	if fc.maxFileSize > 0 {
		body = http.MaxBytesReader(c.Writer, body, fc.maxFileSize)
	}

	n, err := fc.files.Write(c.Request.Context(), t.ObjectName, body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, fc.logger, "Write()", services.ErrFileTooLarge, "")
			return
		}
		respondError(c, fc.logger, "Write()", err, "failed to store file")
		return
	}

	fc.logger.Debug("object stored",
		zap.String("object_name", t.ObjectName),
		zap.Int64("size", n),
	)

	c.JSON(http.StatusOK, gin.H{
		"objectName": t.ObjectName,
		"size":       n,
	})
}
