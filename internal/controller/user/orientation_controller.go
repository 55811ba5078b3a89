package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/lshigami/orientation-event/internal/controller"
	"github.com/lshigami/orientation-event/internal/dto"
	"github.com/lshigami/orientation-event/internal/middleware"
	"github.com/lshigami/orientation-event/internal/service"
)

type OrientationController struct {
	orientationService service.OrientationService
}

func NewOrientationController(orientation service.OrientationService) *OrientationController {
	return &OrientationController{orientationService: orientation}
}

// Start godoc
// @Summary Start or fetch the active orientation test
// @Description Returns the active test of the user, or creates one with a welcome session.
// @Tags Orientation Test
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StartTestRequest false "Language of the test"
// @Success 200 {object} dto.Response{data=orientation.TestView}
// @Failure 400 {object} dto.ErrorResponse "Invalid language code"
// @Failure 401 {object} dto.ErrorResponse
// @Router /orientation-test/start [post]
func (c *OrientationController) Start(ctx *gin.Context) {
	var req dto.StartTestRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			controller.BindFailed(ctx, err)
			return
		}
	}
	res, err := c.orientationService.Start(ctx.Request.Context(), middleware.CurrentUser(ctx), req)
	if err != nil {
		controller.Fail(ctx, err)
		return
	}
	message := "Test existant récupéré"
	if res.Created {
		message = "Test d'orientation démarré avec succès"
	}
	controller.OK(ctx, http.StatusOK, dto.Response{
		Message:     message,
		UUID:        res.Test.UUID,
		IsCompleted: controller.Flag(res.Test.IsCompleted),
		Data:        res.Test,
	})
}

// MyTest godoc
// @Summary Latest orientation test of the user
// @Tags Orientation Test
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response{data=orientation.TestView} "hasTest tells whether a test exists"
// @Failure 401 {object} dto.ErrorResponse
// @Router /orientation-test/my-test [get]
func (c *OrientationController) MyTest(ctx *gin.Context) {
	view, err := c.orientationService.MyTest(ctx.Request.Context(), middleware.CurrentUser(ctx))
	if err != nil {
		controller.Fail(ctx, err)
		return
	}
	if view == nil {
		controller.OK(ctx, http.StatusOK, dto.Response{HasTest: controller.Flag(false), Message: "Aucun test trouvé"})
		return
	}
	controller.OK(ctx, http.StatusOK, dto.Response{HasTest: controller.Flag(true), Data: view})
}

// Resume godoc
// @Summary Resume the active orientation test
// @Tags Orientation Test
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response{data=orientation.TestView}
// @Failure 404 {object} dto.ErrorResponse "No active test"
// @Router /orientation-test/resume [get]
func (c *OrientationController) Resume(ctx *gin.Context) {
	view, err := c.orientationService.Resume(ctx.Request.Context(), middleware.CurrentUser(ctx))
	if err != nil {
		controller.Fail(ctx, err)
		return
	}
	controller.OK(ctx, http.StatusOK, dto.Response{
		UUID:        view.UUID,
		IsCompleted: controller.Flag(view.IsCompleted),
		Data:        view,
	})
}

// Reset godoc
// @Summary Delete the active orientation test
// @Tags Orientation Test
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response
// @Failure 401 {object} dto.ErrorResponse
// @Router /orientation-test/reset [post]
func (c *OrientationController) Reset(ctx *gin.Context) {
	if err := c.orientationService.Reset(ctx.Request.Context(), middleware.CurrentUser(ctx)); err != nil {
		controller.Fail(ctx, err)
		return
	}
	controller.OK(ctx, http.StatusOK, dto.Response{Message: "Test réinitialisé avec succès"})
}

// SaveStep godoc
// @Summary Save one questionnaire step
// @Description Merges the step into the active test, creating the test when needed.
// @Tags Orientation Test
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param step body dto.SaveStepRequest true "Step submission"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.ErrorResponse "Missing step name or data"
// @Failure 401 {object} dto.ErrorResponse
// @Router /orientation-test/save-step [post]
func (c *OrientationController) SaveStep(ctx *gin.Context) {
	var req dto.SaveStepRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindFailed(ctx, err)
		return
	}
	user := middleware.CurrentUser(ctx)
	view, err := c.orientationService.SaveStep(ctx.Request.Context(), user, req)
	if err != nil {
		controller.Fail(ctx, err)
		return
	}
	log.Debug().Uint("userID", user.ID).Str("step", req.StepName).Msg("SaveStep: step stored")
	controller.OK(ctx, http.StatusOK, dto.Response{Message: "Étape sauvegardée avec succès", UUID: view.UUID})
}

// Complete godoc
// @Summary Mark the active test as completed
// @Tags Orientation Test
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response{data=orientation.TestView}
// @Failure 404 {object} dto.ErrorResponse "No active test"
// @Router /orientation-test/completed [post]
func (c *OrientationController) Complete(ctx *gin.Context) {
	view, err := c.orientationService.Complete(ctx.Request.Context(), middleware.CurrentUser(ctx))
	if err != nil {
		controller.Fail(ctx, err)
		return
	}
	controller.OK(ctx, http.StatusOK, dto.Response{Message: "Test marqué comme terminé", Data: view})
}
