// Package router mounts the HTTP handlers under /apis.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	adminctrl "github.com/lshigami/orientation-event/internal/controller/admin"
	userctrl "github.com/lshigami/orientation-event/internal/controller/user"
	"github.com/lshigami/orientation-event/internal/middleware"
)

const BasePath = "/apis"

type Handlers struct {
	fx.In

	Auth        *middleware.AuthMiddleware
	AuthCtrl    *userctrl.AuthController
	Orientation *userctrl.OrientationController
	AdminUsers  *adminctrl.AdminUserController
	Staff       *adminctrl.StaffController
}

func Register(router *gin.Engine, h Handlers) {
	api := router.Group(BasePath)
	requireAuth := h.Auth.RequireAuth()

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.AuthCtrl.Register)
		auth.POST("/login", h.AuthCtrl.Login)
		auth.POST("/logout", h.AuthCtrl.Logout)
		auth.GET("/me", requireAuth, h.AuthCtrl.Me)
		auth.GET("/my-qr-code", requireAuth, h.AuthCtrl.MyQRCode)
		auth.GET("/my-qr-code-pdf", requireAuth, h.AuthCtrl.MyInvitation)
	}

	api.GET("/user/profile", requireAuth, h.AuthCtrl.Profile)

	test := api.Group("/orientation-test", requireAuth)
	{
		test.POST("/start", h.Orientation.Start)
		test.GET("/my-test", h.Orientation.MyTest)
		test.GET("/resume", h.Orientation.Resume)
		test.POST("/reset", h.Orientation.Reset)
		test.POST("/save-step", h.Orientation.SaveStep)
		test.POST("/completed", h.Orientation.Complete)
	}

	admin := api.Group("/admin", requireAuth, h.Auth.RequireAdmin())
	{
		admin.GET("/users", h.AdminUsers.ListUsers)
		admin.POST("/users", h.AdminUsers.CreateUser)
		admin.GET("/users/export", h.AdminUsers.ExportUsers)
		admin.GET("/users/:id", h.AdminUsers.GetUser)
		admin.PUT("/users/:id", h.AdminUsers.UpdateUser)
		admin.GET("/users/:id/test-status", h.AdminUsers.TestStatus)
		admin.GET("/users/:id/report", h.AdminUsers.Report)
		admin.PUT("/users/:id/presence", h.AdminUsers.SetPresence)
		admin.GET("/users/:id/qr-code", h.AdminUsers.QRCode)
		admin.GET("/users/:id/qr-code-pdf", h.AdminUsers.Invitation)
		admin.POST("/qr-scan/:qrCode", h.AdminUsers.ScanQRCode)
		admin.GET("/stats", h.AdminUsers.Stats)

		staff := admin.Group("/staff", h.Auth.RequireSuperAdmin())
		staff.GET("", h.Staff.ListStaff)
		staff.POST("", h.Staff.CreateStaff)
		staff.PUT("/:id", h.Staff.UpdateStaff)
	}
}
