package controller

import (
	"lingua_backend/internal/service"
	"lingua_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	ProfileService *service.ProfileService
}

func NewProfileController(profileService *service.ProfileService) *ProfileController {
	return &ProfileController{ProfileService: profileService}
}

// @Summary 获取档案
// @Description 红心、宝石、经验和连胜，读取时按时间恢复红心
// @Tags 档案
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.Profile}
// @Router /profile [get]
func (c *ProfileController) GetProfile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	profile, err := c.ProfileService.GetProfile(ctx.Request.Context(), user.UserID, user.Name)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// @Summary 设置学习语言
// @Tags 档案
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param language body service.LanguageRequest true "spanish | chinese | french | japanese"
// @Success 200 {object} util.Response{data=model.Profile}
// @Failure 400 {object} util.Response
// @Router /profile/language [put]
func (c *ProfileController) SetLanguage(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.LanguageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	profile, err := c.ProfileService.SetLanguage(ctx.Request.Context(), user.UserID, req.Language)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// @Summary 商店购买
// @Description 用宝石购买红心。余额不足或红心已满时 declined 为 true
// @Tags 商店
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param purchase body service.PurchaseRequest true "heart | heart_refill"
// @Success 200 {object} util.Response{data=service.PurchaseResult}
// @Failure 400 {object} util.Response
// @Router /shop/purchase [post]
func (c *ProfileController) Purchase(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.PurchaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ProfileService.Purchase(ctx.Request.Context(), user.UserID, req.Item)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
