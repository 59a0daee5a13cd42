package api

import (
	"net/http"

	"github.com/Franklyn101/sagbama-land-authentication/internal/auth"
	"github.com/gin-gonic/gin"
)

// AuthController 认证控制器
// 基于静态身份表的占位实现, 真实部署由外部网关接管
type AuthController struct{}

// NewAuthController 创建认证控制器
func NewAuthController() *AuthController {
	return &AuthController{}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 登录
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	user, err := auth.ValidateCredentials(req.Email, req.Password)
	if err != nil {
		Error(ctx, http.StatusUnauthorized, "invalid credentials", "")
		return
	}

	Success(ctx, user)
}

// ListUsers 返回全部身份
func (c *AuthController) ListUsers(ctx *gin.Context) {
	Success(ctx, auth.GetAllUsers())
}
