// Package controller holds the response helpers shared by the admin and
// user handlers.
package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/lshigami/orientation-event/internal/apperr"
	"github.com/lshigami/orientation-event/internal/dto"
)

const msgInvalidBody = "Données invalides"

// OK writes a success envelope.
func OK(ctx *gin.Context, status int, resp dto.Response) {
	resp.Success = true
	ctx.JSON(status, resp)
}

// Fail translates a service error into the error envelope. Fields attached
// to the error are merged into the top level of the body.
func Fail(ctx *gin.Context, err error) {
	appErr := apperr.From(err)
	if appErr.Kind == apperr.KindUnexpected {
		log.Error().Err(err).Str("path", ctx.FullPath()).Msg("request failed")
	}
	body := gin.H{}
	for k, v := range appErr.Fields {
		body[k] = v
	}
	body["success"] = false
	body["message"] = appErr.Message
	ctx.AbortWithStatusJSON(appErr.Kind.Status(), body)
}

// BindFailed answers 400 for a body that could not be decoded or validated.
func BindFailed(ctx *gin.Context, err error) {
	log.Warn().Err(err).Str("path", ctx.FullPath()).Msg("failed to bind request")
	ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
		Message: msgInvalidBody,
		Errors:  []string{err.Error()},
	})
}

// ParamID reads a positive numeric path parameter, answering 400 otherwise.
func ParamID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		Fail(ctx, apperr.Validation("Identifiant invalide"))
		return 0, false
	}
	return uint(id), true
}

// ListQuery reads page, limit and search from the query string.
func ListQuery(ctx *gin.Context) dto.ListQuery {
	return dto.NewListQuery(ctx.Query("page"), ctx.Query("limit"), ctx.Query("search"))
}

// Attachment sends a downloadable file.
func Attachment(ctx *gin.Context, contentType, filename string, content []byte) {
	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(http.StatusOK, contentType, content)
}

// Flag is used for the optional booleans of the envelope.
func Flag(b bool) *bool {
	return &b
}
