package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"palmr-api/internal/application/ports"
	"palmr-api/internal/application/services"
	"palmr-api/internal/infrastructure/avatar"
	"palmr-api/internal/infrastructure/jwt"
	"palmr-api/internal/interface/api/rest/dto/user"
	"palmr-api/internal/interface/api/rest/middleware"
)

// multipart framing on top of the image itself
const avatarFormLimit = avatar.MaxInput + 64<<10

type UserController struct {
	userService ports.UserService
	logger      *zap.Logger
}

func NewUserController(
	r *gin.Engine,
	userService ports.UserService,
	logger *zap.Logger,
	jwtService *jwt.Service,
) *UserController {
	uc := &UserController{
		userService: userService,
		logger:      logger,
	}

	r.GET(RouteMe, middleware.AuthMiddleware(jwtService), uc.MeHandler)
	r.PUT(RouteMeAvatar, middleware.AuthMiddleware(jwtService), uc.UpdateAvatarHandler)

	return uc
}

func (uc *UserController) MeHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	u, err := uc.userService.FindUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, uc.logger, "FindUserByID()", err, "failed to get a user")
		return
	}

	c.JSON(http.StatusOK, user.ToResponseUser(*u))
}

func (uc *UserController) UpdateAvatarHandler(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, avatarFormLimit)
	fh, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, uc.logger, "FormFile()", services.ErrImageTooLarge, "")
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, uc.logger, "Open()", err, "failed to read image")
		return
	}
	defer f.Close()

	u, err := uc.userService.UpdateAvatar(c.Request.Context(), userID, f)
	if err != nil {
		respondError(c, uc.logger, "UpdateAvatar()", err, "failed to update avatar")
		return
	}

	c.JSON(http.StatusOK, user.ToResponseUser(*u))
}
