package controller

import (
	"errors"

	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

type AnswerItem struct {
	QuestionID uint   `json:"questionId"`
	Answer     string `json:"answer"`
}

type SubmitQuizRequest struct {
	Answers []AnswerItem `json:"answers"`
}

type QuestionRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// QuizResult is the body of a graded or rejected submission.
type QuizResult struct {
	*service.QuizStatus
	Rejected bool `json:"rejected"`
}

// GetQuiz godoc
// @Summary 获取章节测验
// @Tags 测验
// @Security ApiKeyAuth
// @Produce json
// @Param chapterId path int true "章节ID"
// @Success 200 {object} util.Response{data=service.QuizView}
// @Failure 404 {object} util.Response "章节没有测验"
// @Router /chapters/{chapterId}/quiz [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "chapterId")
	if !ok {
		return
	}
	view, err := c.QuizService.GetQuiz(ctx.Request.Context(), currentActor(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// SubmitQuiz godoc
// @Summary 提交测验答案
// @Description A closed quiz is not an error: the body has rejected=true and the correct answers
// @Tags 测验
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param chapterId path int true "章节ID"
// @Param body body SubmitQuizRequest true "答案"
// @Success 200 {object} util.Response{data=QuizResult}
// @Router /chapters/{chapterId}/quiz [post]
func (c *QuizController) SubmitQuiz(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "chapterId")
	if !ok {
		return
	}
	var req SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	answers := make(map[uint]string, len(req.Answers))
	for _, a := range req.Answers {
		answers[a.QuestionID] = a.Answer
	}

	status, err := c.QuizService.Submit(ctx.Request.Context(), currentActor(ctx), id, answers)
	var closed *service.NoAttemptsRemainingError
	if errors.As(err, &closed) {
		util.AddNotice(ctx, util.NoticeError, "no attempts remaining")
		util.Success(ctx, QuizResult{QuizStatus: closed.Status, Rejected: true})
		return
	}
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	switch status.State {
	case service.QuizPassed:
		util.AddNotice(ctx, util.NoticeSuccess, "quiz passed")
	case service.QuizExhausted:
		util.AddNotice(ctx, util.NoticeInfo, "no attempts left, answers revealed")
	}
	util.Success(ctx, QuizResult{QuizStatus: status})
}

// ListQuestions godoc
// @Summary 查看章节题目及答案（教师）
// @Tags 测验
// @Security ApiKeyAuth
// @Produce json
// @Param chapterId path int true "章节ID"
// @Success 200 {object} util.Response{data=[]service.RevealedAnswer}
// @Router /chapters/{chapterId}/quiz/questions [get]
func (c *QuizController) ListQuestions(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "chapterId")
	if !ok {
		return
	}
	list, err := c.QuizService.ListQuestionsForEditing(ctx.Request.Context(), currentActor(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// AddQuestion godoc
// @Summary 添加测验题目
// @Tags 测验
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param chapterId path int true "章节ID"
// @Param body body QuestionRequest true "题目"
// @Success 201 {object} util.Response
// @Router /chapters/{chapterId}/quiz/add [post]
func (c *QuizController) AddQuestion(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "chapterId")
	if !ok {
		return
	}
	var req QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	q, err := c.QuizService.AddQuestion(ctx.Request.Context(), currentActor(ctx), id, req.Question, req.Answer)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.AddNotice(ctx, util.NoticeSuccess, "question added")
	util.Created(ctx, gin.H{"id": q.ID, "chapterId": q.ChapterID, "question": q.Question})
}

// DeleteQuestion godoc
// @Summary 删除测验题目
// @Tags 测验
// @Security ApiKeyAuth
// @Produce json
// @Param questionId path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /quiz/questions/{questionId}/delete [post]
func (c *QuizController) DeleteQuestion(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "questionId")
	if !ok {
		return
	}
	if err := c.QuizService.DeleteQuestion(ctx.Request.Context(), currentActor(ctx), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
