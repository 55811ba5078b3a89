package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lshigami/orientation-event/internal/controller"
	"github.com/lshigami/orientation-event/internal/dto"
	"github.com/lshigami/orientation-event/internal/middleware"
	"github.com/lshigami/orientation-event/internal/service"
)

type AuthController struct {
	authService       service.AuthService
	invitationService service.InvitationService
}

func NewAuthController(auth service.AuthService, invitations service.InvitationService) *AuthController {
	return &AuthController{authService: auth, invitationService: invitations}
}

// Register godoc
// @Summary Create an account
// @Description Self-registration. Returns an access token like login.
// @Tags Auth
// @Accept json
// @Produce json
// @Param account body dto.RegisterRequest true "Account data"
// @Success 201 {object} dto.Response{data=dto.LoginResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid body or email already used"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindFailed(ctx, err)
		return
	}
	res, err := c.authService.Register(ctx.Request.Context(), req)
	if err != nil {
		controller.Fail(ctx, err)
		return
	}
	controller.OK(ctx, http.StatusCreated, dto.Response{Message: "Inscription réussie", Data: res})
}

// Login godoc
// @Summary Log in
// @Description Authenticates with an email or a telephone number and a password.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.Response{data=dto.LoginResponse}
// @Failure 400 {object} dto.ErrorResponse "Malformed body, missing identifier or password"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	// no binding rules: empty fields get the service's own message
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindFailed(ctx, err)
		return
	}
	res, err := c.authService.Login(ctx.Request.Context(), req)
	if err != nil {
		controller.Fail(ctx, err)
		return
	}
	controller.OK(ctx, http.StatusOK, dto.Response{Message: "Connexion réussie", Data: res})
}

// Me godoc
// @Summary Current account
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response{data=dto.AuthUserDTO}
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)
	controller.OK(ctx, http.StatusOK, dto.Response{Data: c.authService.Me(user)})
}

// Logout godoc
// @Summary Log out
// @Description Tokens are stateless, the client drops its token.
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.Response
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	controller.OK(ctx, http.StatusOK, dto.Response{Message: "Déconnexion réussie"})
}

// Profile godoc
// @Summary Profile of the current user
// @Tags User
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response{data=dto.ProfileDTO}
// @Failure 401 {object} dto.ErrorResponse
// @Router /user/profile [get]
func (c *AuthController) Profile(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)
	controller.OK(ctx, http.StatusOK, dto.Response{Data: c.authService.Profile(user)})
}

// MyQRCode godoc
// @Summary QR check-in token of the current user
// @Description The token is issued on first access.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response{data=dto.QRCodeDTO}
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/my-qr-code [get]
func (c *AuthController) MyQRCode(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)
	token, err := c.invitationService.QRCode(ctx.Request.Context(), user.ID)
	if err != nil {
		controller.Fail(ctx, err)
		return
	}
	controller.OK(ctx, http.StatusOK, dto.Response{Data: dto.QRCodeDTO{QRCode: token}})
}

// MyInvitation godoc
// @Summary Invitation card of the current user
// @Tags Auth
// @Produce application/pdf
// @Security BearerAuth
// @Success 200 {file} file "PDF invitation"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse "PDF rendering failed"
// @Router /auth/my-qr-code-pdf [get]
func (c *AuthController) MyInvitation(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)
	card, err := c.invitationService.Card(ctx.Request.Context(), user.ID)
	if err != nil {
		controller.Fail(ctx, err)
		return
	}
	controller.Attachment(ctx, "application/pdf", card.Filename, card.Content)
}
