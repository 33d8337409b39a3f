package handler

import (
	"errors"

	"github.com/Justinlulululu/PPAP-Master/internal/config"
	"github.com/Justinlulululu/PPAP-Master/internal/ppap/repository"
	"github.com/Justinlulululu/PPAP-Master/internal/ppap/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	svc *service.AuthService
	cfg *config.Config
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(svc *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{svc: svc, cfg: cfg}
}

// Register 邮箱注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	profile, pair, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			Conflict(c, err.Error())
			return
		}
		InternalError(c, err.Error())
		return
	}

	Created(c, gin.H{
		"user":  profile,
		"token": pair,
	})
}

// Login 邮箱密码登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	profile, pair, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			Unauthorized(c, err.Error())
			return
		}
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{
		"user":  profile,
		"token": pair,
	})
}

// Refresh 换发token
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			Unauthorized(c, err.Error())
			return
		}
		InternalError(c, err.Error())
		return
	}

	Success(c, pair)
}

// Logout 登出
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), GetUserID(c)); err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, nil)
}

// GetCurrentUser 当前用户档案
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	profile, err := h.svc.GetCurrentUser(c.Request.Context(), GetUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "Profile not found")
			return
		}
		InternalError(c, err.Error())
		return
	}
	Success(c, profile)
}

// WeChatLogin 微信扫码登录占位，OAuth流程未接入
// GET /api/v1/auth/wechat/login
func (h *AuthHandler) WeChatLogin(c *gin.Context) {
	NotImplemented(c, "WeChat login is not implemented yet")
}
