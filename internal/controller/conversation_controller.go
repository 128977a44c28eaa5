package controller

import (
	"lingua_backend/internal/service"
	"lingua_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ConversationController struct {
	ConversationService *service.ConversationService
}

func NewConversationController(conversationService *service.ConversationService) *ConversationController {
	return &ConversationController{ConversationService: conversationService}
}

// @Summary 对话陪练
// @Description 用当前学习语言回复，最多参考最近 10 轮对话
// @Tags 练习
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ConversationRequest true "消息和历史"
// @Success 200 {object} util.Response{data=service.ConversationReply}
// @Failure 400 {object} util.Response
// @Router /practice/conversation [post]
func (c *ConversationController) Converse(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ConversationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	reply, err := c.ConversationService.Reply(ctx.Request.Context(), user.UserID, user.Name, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, reply)
}
