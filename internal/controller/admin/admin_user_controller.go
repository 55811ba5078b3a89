package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lshigami/orientation-event/internal/apperr"
	"github.com/lshigami/orientation-event/internal/controller"
	"github.com/lshigami/orientation-event/internal/dto"
	"github.com/lshigami/orientation-event/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminUserController struct {
	userService       service.AdminUserService
	statsService      service.StatsService
	invitationService service.InvitationService
}

func NewAdminUserController(
	users service.AdminUserService,
	stats service.StatsService,
	invitations service.InvitationService,
) *AdminUserController {
	return &AdminUserController{userService: users, statsService: stats, invitationService: invitations}
}

// ListUsers godoc
// @Summary (Admin) List registered users
// @Description Non-staff users, newest first, with their test progress.
// @Tags Admin - Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page, starting at 1"
// @Param limit query int false "Page size, 1 to 100 (default 20)"
// @Param search query string false "Matches email, names or telephone"
// @Success 200 {object} dto.Response{data=[]dto.UserSummaryDTO}
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/users [get]
func (c *AdminUserController) ListUsers(ctx *gin.Context) {
	rows, page, err := c.userService.ListUsers(ctx.Request.Context(), controller.ListQuery(ctx))
	if err != nil {
		controller.Fail(ctx, err)
		return
	}
	controller.OK(ctx, http.StatusOK, dto.Response{Data: rows, Pagination: page})
}

// CreateUser godoc
// @Summary (Admin) Create a user
// @Tags Admin - Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body dto.CreateUserRequest true "User data"
// @Success 201 {object} dto.Response{data=dto.UserSummaryDTO}
// @Failure 400 {object} dto.ErrorResponse "Missing email or password, or email already used"
// @Router /admin/users [post]
func (c *AdminUserController) CreateUser(ctx *gin.Context) {
	var req dto.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.Fail(ctx, apperr.Validation("Email et mot de passe sont obligatoires"))
		return
	}
	user, err := c.userService.CreateUser(ctx.Request.Context(), req)
	if err != nil {
		controller.Fail(ctx, err)
		return
	}
	controller.OK(ctx, http.StatusCreated, dto.Response{Message: "Utilisateur créé avec succès", Data: user})
}

// GetUser godoc
// @Summary (Admin) Get a user
// @Tags Admin - Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.Response{data=dto.UserSummaryDTO}
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/users/{id} [get]
func (c *AdminUserController) GetUser(ctx *gin.Context) {
	id, ok := controller.ParamID(ctx, "id")
	if !ok {
		return
	}
	user, err := c.userService.GetUser(ctx.Request.Context(), id)
	if err != nil {
		controller.Fail(ctx, err)
		return
	}
	controller.OK(ctx, http.StatusOK, dto.Response{Data: user})
}

// UpdateUser godoc
// @Summary (Admin) Update a user
// @Description Only the fields sent are changed.
// @Tags Admin - Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param user body dto.UpdateUserRequest true "Fields to change"
// @Success 200 {object} dto.Response{data=dto.UserSummaryDTO}
// @Failure 400 {object} dto.ErrorResponse "Email already used"
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/users/{id} [put]
func (c *AdminUserController) UpdateUser(ctx *gin.Context) {
	id, ok := controller.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindFailed(ctx, err)
		return
	}
	user, err := c.userService.UpdateUser(ctx.Request.Context(), id, req)
	if err != nil {
		controller.Fail(ctx, err)
		return
	}
	controller.OK(ctx, http.StatusOK, dto.Response{Message: "Utilisateur mis à jour avec succès", Data: user})
}

// TestStatus godoc
// @Summary (Admin) Latest test of a user with its progress
// @Tags Admin - Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.Response{data=dto.TestStatusDTO}
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/users/{id}/test-status [get]
func (c *AdminUserController) TestStatus(ctx *gin.Context) {
	id, ok := controller.ParamID(ctx, "id")
	if !ok {
		return
	}
	status, err := c.userService.TestStatus(ctx.Request.Context(), id)
	if err != nil {
		controller.Fail(ctx, err)
		return
	}
	if status == nil {
		controller.OK(ctx, http.StatusOK, dto.Response{
			HasTest: controller.Flag(false),
			Message: "Aucun test trouvé pour cet utilisateur",
		})
		return
	}
	controller.OK(ctx, http.StatusOK, dto.Response{HasTest: controller.Flag(true), Data: status})
}

// Report godoc
// @Summary (Admin) Orientation report of a user
// @Description Only available once every step of the latest test is completed.
// @Tags Admin - Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.Response{data=dto.ReportDTO}
// @Failure 400 {object} dto.ErrorResponse "Test not finished, with completedSteps and requiredSteps"
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/users/{id}/report [get]
func (c *AdminUserController) Report(ctx *gin.Context) {
	id, ok := controller.ParamID(ctx, "id")
	if !ok {
		return
	}
	report, err := c.userService.Report(ctx.Request.Context(), id)
	if err != nil {
		controller.Fail(ctx, err)
		return
	}
	controller.OK(ctx, http.StatusOK, dto.Response{Data: report})
}

// SetPresence godoc
// @Summary (Admin) Set the presence flag of a user
// @Tags Admin - Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param presence body dto.PresenceRequest true "Presence"
// @Success 200 {object} dto.Response{data=dto.PresenceDTO}
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/users/{id}/presence [put]
func (c *AdminUserController) SetPresence(ctx *gin.Context) {
	id, ok := controller.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req dto.PresenceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindFailed(ctx, err)
		return
	}
	res, err := c.userService.SetPresence(ctx.Request.Context(), id, req.IsPresent)
	if err != nil {
		controller.Fail(ctx, err)
		return
	}
	controller.OK(ctx, http.StatusOK, dto.Response{Message: "Présence mise à jour avec succès", Data: res})
}

// QRCode godoc
// @Summary (Admin) QR check-in token of a user
// @Tags Admin - Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.Response{data=dto.QRCodeDTO}
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/users/{id}/qr-code [get]
func (c *AdminUserController) QRCode(ctx *gin.Context) {
	id, ok := controller.ParamID(ctx, "id")
	if !ok {
		return
	}
	token, err := c.invitationService.QRCode(ctx.Request.Context(), id)
	if err != nil {
		controller.Fail(ctx, err)
		return
	}
	controller.OK(ctx, http.StatusOK, dto.Response{Data: dto.QRCodeDTO{QRCode: token}})
}

// Invitation godoc
// @Summary (Admin) Invitation card of a user
// @Tags Admin - Users
// @Produce application/pdf
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {file} file "PDF invitation"
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse "PDF rendering failed"
// @Router /admin/users/{id}/qr-code-pdf [get]
func (c *AdminUserController) Invitation(ctx *gin.Context) {
	id, ok := controller.ParamID(ctx, "id")
	if !ok {
		return
	}
	card, err := c.invitationService.Card(ctx.Request.Context(), id)
	if err != nil {
		controller.Fail(ctx, err)
		return
	}
	controller.Attachment(ctx, "application/pdf", card.Filename, card.Content)
}

// ScanQRCode godoc
// @Summary (Admin) Check a guest in
// @Description Parses the token printed on the invitation and marks the user present.
// @Tags Admin - Check-in
// @Produce json
// @Security BearerAuth
// @Param qrCode path string true "QR token"
// @Success 200 {object} dto.Response{data=dto.ScanResultDTO}
// @Failure 400 {object} dto.ErrorResponse "Invalid QR code"
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/qr-scan/{qrCode} [post]
func (c *AdminUserController) ScanQRCode(ctx *gin.Context) {
	res, err := c.userService.ScanQRCode(ctx.Request.Context(), ctx.Param("qrCode"))
	if err != nil {
		controller.Fail(ctx, err)
		return
	}
	controller.OK(ctx, http.StatusOK, dto.Response{Message: "Présence enregistrée avec succès", Data: res})
}

// Stats godoc
// @Summary (Admin) Event figures
// @Tags Admin - Stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response{data=dto.StatsDTO}
// @Router /admin/stats [get]
func (c *AdminUserController) Stats(ctx *gin.Context) {
	stats, err := c.statsService.Stats(ctx.Request.Context())
	if err != nil {
		controller.Fail(ctx, err)
		return
	}
	controller.OK(ctx, http.StatusOK, dto.Response{Data: stats})
}

// ExportUsers godoc
// @Summary (Admin) Export users as a spreadsheet
// @Tags Admin - Users
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param search query string false "Same filter as the listing"
// @Success 200 {file} file "XLSX workbook"
// @Router /admin/users/export [get]
func (c *AdminUserController) ExportUsers(ctx *gin.Context) {
	content, err := c.userService.ExportUsers(ctx.Request.Context(), ctx.Query("search"))
	if err != nil {
		controller.Fail(ctx, err)
		return
	}
	controller.Attachment(ctx, xlsxContentType, "utilisateurs.xlsx", content)
}
