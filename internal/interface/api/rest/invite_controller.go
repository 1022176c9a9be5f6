package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"palmr-api/internal/application/ports"
	"palmr-api/internal/infrastructure/jwt"
	inviteDTO "palmr-api/internal/interface/api/rest/dto/invite"
	"palmr-api/internal/interface/api/rest/dto/user"
	"palmr-api/internal/interface/api/rest/middleware"
	"palmr-api/internal/interface/api/rest/validator"
)

type InviteController struct {
	inviteService ports.InviteService
	logger        *zap.Logger
}

func NewInviteController(
	r *gin.Engine,
	inviteService ports.InviteService,
	logger *zap.Logger,
	jwtService *jwt.Service,
) *InviteController {
	ic := &InviteController{
		inviteService: inviteService,
		logger:        logger,
	}

	r.POST(RouteInviteTokens, middleware.AuthMiddleware(jwtService), middleware.RequireAdmin(), ic.CreateInviteHandler)
	r.GET(RouteInviteToken, ic.ValidateInviteHandler)
	r.POST(RouteRegisterWithInvite, ic.RegisterHandler)

	return ic
}

func (ic *InviteController) CreateInviteHandler(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}

	t, err := ic.inviteService.CreateInvite(c.Request.Context(), adminID)
	if err != nil {
		respondError(c, ic.logger, "CreateInvite()", err, "failed to create an invite")
		return
	}

	c.JSON(http.StatusCreated, inviteDTO.ToResponseToken(*t))
}

func (ic *InviteController) ValidateInviteHandler(c *gin.Context) {
	status, err := ic.inviteService.ValidateInvite(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, ic.logger, "ValidateInvite()", err, "failed to validate an invite")
		return
	}

	c.JSON(http.StatusOK, inviteDTO.ToResponseStatus(status))
}

func (ic *InviteController) RegisterHandler(c *gin.Context) {
	var req inviteDTO.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return
	}
	if errs := validator.ValidateRegister(req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": errs,
		})
		return
	}

	u, err := ic.inviteService.RegisterWithInvite(c.Request.Context(), inviteDTO.ToRegisterInput(req))
	if err != nil {
		respondError(c, ic.logger, "RegisterWithInvite()", err, "failed to register")
		return
	}

	c.JSON(http.StatusCreated, user.ToResponseUser(*u))
}
