package handler

import (
	"github.com/candat96/mini-cis/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register 注册账号
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.svc.Register(req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, user)
}

// Login 登录并签发令牌
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.Login(req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}

// Me 当前登录用户信息
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.svc.GetUser(GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, user)
}

// ListDoctors 医生列表
func (h *AuthHandler) ListDoctors(c *gin.Context) {
	doctors, err := h.svc.ListDoctors()
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, doctors)
}
