package controller

import (
	"lingua_backend/internal/service"
	"lingua_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LessonController struct {
	LessonService *service.LessonService
}

func NewLessonController(lessonService *service.LessonService) *LessonController {
	return &LessonController{LessonService: lessonService}
}

func exerciseIndex(ctx *gin.Context) (int, bool) {
	index, ok := util.ParseIndex(ctx.Param("index"))
	if !ok {
		util.BadRequest(ctx, "invalid index")
		return 0, false
	}
	return index, true
}

// @Summary 开始课时
// @Description 检查红心并重置本轮会话；已完成的课时进入练习模式
// @Tags 课时
// @Produce json
// @Security BearerAuth
// @Param id path int true "课时ID"
// @Success 200 {object} util.Response{data=service.LessonStart}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /lessons/{id}/start [post]
func (c *LessonController) StartLesson(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	lessonID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	start, err := c.LessonService.StartLesson(ctx.Request.Context(), user.UserID, user.Name, lessonID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, start)
}

// @Summary 获取练习
// @Description 进入第 index 个练习（从 1 开始），超出数量时 finished 为 true
// @Tags 课时
// @Produce json
// @Security BearerAuth
// @Param id path int true "课时ID"
// @Param index path int true "练习序号"
// @Success 200 {object} util.Response{data=service.ExerciseView}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /lessons/{id}/exercises/{index} [get]
func (c *LessonController) GetExercise(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	lessonID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	index, ok := exerciseIndex(ctx)
	if !ok {
		return
	}

	view, err := c.LessonService.ViewExercise(ctx.Request.Context(), user.UserID, lessonID, index)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 提交答案
// @Description 判题并发放奖励。已结束的练习再次提交时 stale 为 true
// @Tags 课时
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "课时ID"
// @Param index path int true "练习序号"
// @Param submission body service.Submission true "答案"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /lessons/{id}/exercises/{index}/submit [post]
func (c *LessonController) SubmitAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	lessonID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	index, ok := exerciseIndex(ctx)
	if !ok {
		return
	}

	var req service.Submission
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.LessonService.Submit(ctx.Request.Context(), user.UserID, lessonID, index, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 获取提示
// @Tags 课时
// @Produce json
// @Security BearerAuth
// @Param id path int true "课时ID"
// @Param index path int true "练习序号"
// @Success 200 {object} util.Response
// @Router /lessons/{id}/exercises/{index}/hint [get]
func (c *LessonController) GetHint(ctx *gin.Context) {
	lessonID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	index, ok := exerciseIndex(ctx)
	if !ok {
		return
	}

	hint, err := c.LessonService.Hint(ctx.Request.Context(), lessonID, index)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"hint": hint})
}

// @Summary 预取课时提示
// @Description 一次生成课时内全部练习的提示，已缓存的直接返回
// @Tags 课时
// @Produce json
// @Security BearerAuth
// @Param id path int true "课时ID"
// @Success 200 {object} util.Response{data=[]service.LessonHint}
// @Failure 404 {object} util.Response
// @Router /lessons/{id}/hints [get]
func (c *LessonController) GetLessonHints(ctx *gin.Context) {
	lessonID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	hints, err := c.LessonService.Hints(ctx.Request.Context(), lessonID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, hints)
}

// @Summary 完成课时
// @Description 按本轮会话结算得分。首次完成发放奖励，重复完成按练习处理
// @Tags 课时
// @Produce json
// @Security BearerAuth
// @Param id path int true "课时ID"
// @Success 200 {object} util.Response{data=service.CompletionSummary}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /lessons/{id}/complete [post]
func (c *LessonController) CompleteLesson(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	lessonID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	summary, err := c.LessonService.CompleteLesson(ctx.Request.Context(), user.UserID, lessonID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// @Summary 作答回顾
// @Description 每个练习最近一次的作答记录
// @Tags 课时
// @Produce json
// @Security BearerAuth
// @Param id path int true "课时ID"
// @Success 200 {object} util.Response{data=[]service.ReviewItem}
// @Router /lessons/{id}/review [get]
func (c *LessonController) ReviewLesson(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	lessonID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	items, err := c.LessonService.Review(ctx.Request.Context(), user.UserID, lessonID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, items)
}
