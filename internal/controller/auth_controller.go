package controller

import (
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService  *service.AuthService
	TokenService *service.TokenService
}

func NewAuthController(authService *service.AuthService, tokenService *service.TokenService) *AuthController {
	return &AuthController{
		AuthService:  authService,
		TokenService: tokenService,
	}
}

// SignUpRequest defines model for registration
// swagger:model SignUpRequest
type SignUpRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

// SignInRequest defines model for login
// swagger:model SignInRequest
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp godoc
// @Summary 注册新用户
// @Description Register an educator or student account
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body SignUpRequest true "用户注册信息"
// @Success 201 {object} util.Response{data=model.User} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "邮箱已被注册"
// @Router /signup [post]
func (c *AuthController) SignUp(ctx *gin.Context) {
	var req SignUpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.Register(ctx.Request.Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      model.UserRole(req.Role),
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.AddNotice(ctx, util.NoticeSuccess, "account created, please sign in")
	util.Created(ctx, user)
}

// SignIn godoc
// @Summary 用户登录
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body SignInRequest true "登录凭证"
// @Success 200 {object} util.Response "登录成功"
// @Failure 401 {object} util.Response "邮箱或密码错误"
// @Router /signin [post]
func (c *AuthController) SignIn(ctx *gin.Context) {
	var req SignInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, user, err := c.AuthService.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	data := gin.H{
		"token":     token,
		"expiresIn": int(c.AuthService.TokenTTL().Seconds()),
		"user":      user,
	}
	// 登录后直接下发 CSRF token，省去一次请求
	if c.TokenService != nil {
		csrf, err := c.TokenService.IssueCSRF(ctx.Request.Context(), user.ID)
		if err != nil {
			util.LogInternalError(ctx, err)
			return
		}
		data["csrfToken"] = csrf
	}
	util.Success(ctx, data)
}

// SignOut godoc
// @Summary 退出登录
// @Tags 认证
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /signout [post]
func (c *AuthController) SignOut(ctx *gin.Context) {
	if err := c.AuthService.Logout(ctx.Request.Context(), util.GetUserFromContext(ctx)); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.AddNotice(ctx, util.NoticeSuccess, "signed out")
	util.Success(ctx, nil)
}

// CSRFToken godoc
// @Summary 获取 CSRF token
// @Tags 认证
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /csrf-token [get]
func (c *AuthController) CSRFToken(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	token, err := c.TokenService.IssueCSRF(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"csrfToken": token, "header": util.CSRFHeader})
}

// GetProfile godoc
// @Summary 获取当前用户信息
// @Tags 用户
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} util.Response{data=model.User}
// @Router /profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	user, err := c.AuthService.GetCurrentUser(ctx.Request.Context(), util.GetUserFromContext(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}
