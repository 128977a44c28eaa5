package controller

import (
	"errors"
	"lingua_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError 将业务错误映射为 HTTP 状态码
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrLessonNotFound),
		errors.Is(err, util.ErrExerciseNotFound),
		errors.Is(err, util.ErrProfileNotFound):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, util.ErrOutOfHearts):
		util.Forbidden(ctx, err.Error())
	case errors.Is(err, util.ErrLessonIncomplete):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidLanguage),
		errors.Is(err, util.ErrUnknownShopItem):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// pathID 解析路径中的正整数 ID
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id := util.MustParseUint(ctx.Param(name))
	if id == 0 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return id, true
}
