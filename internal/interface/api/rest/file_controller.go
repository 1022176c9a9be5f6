package rest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"palmr-api/internal/application/ports"
	"palmr-api/internal/domain/user"
	"palmr-api/internal/infrastructure/jwt"
	fileDTO "palmr-api/internal/interface/api/rest/dto/file"
	"palmr-api/internal/interface/api/rest/middleware"
	"palmr-api/internal/interface/api/rest/validator"
)

type FileController struct {
	fileService ports.FileService
	logger      *zap.Logger
}

func NewFileController(
	r *gin.Engine,
	fileService ports.FileService,
	logger *zap.Logger,
	jwtService *jwt.Service,
) *FileController {
	fc := &FileController{
		fileService: fileService,
		logger:      logger,
	}

	auth := middleware.AuthMiddleware(jwtService)
	r.POST(RouteUploadURL, auth, fc.UploadURLHandler)
	r.GET(RouteDownloadURL, auth, fc.DownloadURLHandler)
	r.GET(RouteFiles, auth, fc.ListFilesHandler)
	r.POST(RouteFiles, auth, fc.RegisterFileHandler)
	r.DELETE(RouteFile, auth, fc.DeleteFileHandler)

	return fc
}

// currentUser writes a 401 when the caller is unknown.
func currentUser(c *gin.Context) (user.UUID, bool) {
	id, ok := middleware.UserUUID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return id, ok
}

func (fc *FileController) UploadURLHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req fileDTO.UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return
	}
	if errs := validator.ValidateUploadURL(req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": errs,
		})
		return
	}

	p, err := fc.fileService.RequestUploadURL(c.Request.Context(), userID, ports.UploadURLInput{
		ObjectName: req.ObjectName,
		FileName:   req.FileName,
		Size:       req.Size,
	})
	if err != nil {
		respondError(c, fc.logger, "RequestUploadURL()", err, "failed to issue upload url")
		return
	}

	c.JSON(http.StatusOK, fileDTO.ToResponsePresignedURL(*p))
}

func (fc *FileController) DownloadURLHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	objectName := strings.TrimSpace(c.Query("objectName"))
	if objectName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "objectName is required"})
		return
	}

	p, err := fc.fileService.DownloadURL(c.Request.Context(), userID, objectName)
	if err != nil {
		respondError(c, fc.logger, "DownloadURL()", err, "failed to issue download url")
		return
	}

	c.JSON(http.StatusOK, fileDTO.ToResponsePresignedURL(*p))
}

func (fc *FileController) ListFilesHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	page, err := validator.ValidatePage(c.Query("page"))
	if err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": err.Error()},
		)
		return
	}

	files, err := fc.fileService.ListFiles(c.Request.Context(), userID, page)
	if err != nil {
		respondError(c, fc.logger, "ListFiles()", err, "failed to get files")
		return
	}

	c.JSON(http.StatusOK, fileDTO.ResponseData{
		Data: fileDTO.ToResponseFiles(files),
	})
}

func (fc *FileController) RegisterFileHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req fileDTO.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return
	}
	if errs := validator.ValidateRegisterFile(req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": errs,
		})
		return
	}

	uf, err := fc.fileService.RegisterFile(c.Request.Context(), userID, fileDTO.ToDomainUserFile(req))
	if err != nil {
		respondError(c, fc.logger, "RegisterFile()", err, "failed to register a file")
		return
	}

	c.JSON(http.StatusCreated, fileDTO.ToResponseFile(*uf))
}

func (fc *FileController) DeleteFileHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ok, fileID := validator.IsUUID(c.Param("file_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "file_id must be a valid UUID"},
		)
		return
	}

	if err := fc.fileService.DeleteFile(c.Request.Context(), userID, fileID); err != nil {
		respondError(c, fc.logger, "DeleteFile()", err, "failed to delete a file")
		return
	}

	c.Status(http.StatusNoContent)
}
