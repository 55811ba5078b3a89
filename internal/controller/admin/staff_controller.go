package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lshigami/orientation-event/internal/apperr"
	"github.com/lshigami/orientation-event/internal/controller"
	"github.com/lshigami/orientation-event/internal/dto"
	"github.com/lshigami/orientation-event/internal/service"
)

type StaffController struct {
	staffService service.StaffService
}

func NewStaffController(staff service.StaffService) *StaffController {
	return &StaffController{staffService: staff}
}

// ListStaff godoc
// @Summary (Super admin) List staff members
// @Tags Admin - Staff
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page, starting at 1"
// @Param limit query int false "Page size, 1 to 100 (default 20)"
// @Param search query string false "Matches email, names or telephone"
// @Success 200 {object} dto.Response{data=[]dto.StaffDTO}
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/staff [get]
func (c *StaffController) ListStaff(ctx *gin.Context) {
	rows, page, err := c.staffService.ListStaff(ctx.Request.Context(), controller.ListQuery(ctx))
	if err != nil {
		controller.Fail(ctx, err)
		return
	}
	controller.OK(ctx, http.StatusOK, dto.Response{Data: rows, Pagination: page})
}

// CreateStaff godoc
// @Summary (Super admin) Create a staff member
// @Tags Admin - Staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param staff body dto.CreateStaffRequest true "Staff member"
// @Success 201 {object} dto.Response{data=dto.StaffDTO}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/staff [post]
func (c *StaffController) CreateStaff(ctx *gin.Context) {
	var req dto.CreateStaffRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.Fail(ctx, apperr.Validation("Email et mot de passe sont obligatoires"))
		return
	}
	staff, err := c.staffService.CreateStaff(ctx.Request.Context(), req)
	if err != nil {
		controller.Fail(ctx, err)
		return
	}
	controller.OK(ctx, http.StatusCreated, dto.Response{Message: "Membre du staff créé avec succès", Data: staff})
}

// UpdateStaff godoc
// @Summary (Super admin) Update a staff member
// @Tags Admin - Staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff member ID"
// @Param staff body dto.UpdateStaffRequest true "Fields to change"
// @Success 200 {object} dto.Response{data=dto.StaffDTO}
// @Failure 400 {object} dto.ErrorResponse "Not a staff member, or email already used"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/staff/{id} [put]
func (c *StaffController) UpdateStaff(ctx *gin.Context) {
	id, ok := controller.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateStaffRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindFailed(ctx, err)
		return
	}
	staff, err := c.staffService.UpdateStaff(ctx.Request.Context(), id, req)
	if err != nil {
		controller.Fail(ctx, err)
		return
	}
	controller.OK(ctx, http.StatusOK, dto.Response{Message: "Membre du staff mis à jour avec succès", Data: staff})
}
