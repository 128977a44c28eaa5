package controller

import (
	"lingua_backend/internal/service"
	"lingua_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
)

type QuestController struct {
	QuestService *service.QuestService
}

func NewQuestController(questService *service.QuestService) *QuestController {
	return &QuestController{QuestService: questService}
}

// @Summary 任务面板
// @Description 当前日/周周期内的全部任务及进度
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.QuestView}
// @Router /quests [get]
func (c *QuestController) GetQuests(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	board, err := c.QuestService.Board(ctx.Request.Context(), user.UserID, time.Now())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, board)
}
