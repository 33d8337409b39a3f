package handler

import (
	"errors"

	"github.com/Justinlulululu/PPAP-Master/internal/ppap/repository"
	"github.com/Justinlulululu/PPAP-Master/internal/ppap/service"
	"github.com/gin-gonic/gin"
)

// UserHandler 用户处理器
type UserHandler struct {
	svc *service.ProfileService
}

// NewUserHandler 创建用户处理器
func NewUserHandler(svc *service.ProfileService) *UserHandler {
	return &UserHandler{svc: svc}
}

// List 获取可指派用户列表，按显示名排序
// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.svc.ListAssignable(c.Request.Context())
	if err != nil {
		InternalError(c, "获取用户列表失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": users})
}

// Get 获取用户档案
// GET /api/v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	profile, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "User not found")
			return
		}
		InternalError(c, err.Error())
		return
	}
	Success(c, profile)
}

// Search 搜索用户（按名字模糊匹配）
// GET /api/v1/users/search?q=xxx
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		BadRequest(c, "搜索关键字不能为空")
		return
	}
	users, err := h.svc.Search(c.Request.Context(), q)
	if err != nil {
		InternalError(c, "搜索用户失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": users})
}

// UploadAvatar 上传当前用户头像
// POST /api/v1/users/me/avatar
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "无法解析上传文件: "+err.Error())
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "读取上传文件失败: "+err.Error())
		return
	}
	defer src.Close()

	url, err := h.svc.UploadAvatar(
		c.Request.Context(),
		GetUserID(c),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		src,
	)
	if err != nil {
		InternalError(c, "上传头像失败: "+err.Error())
		return
	}

	Success(c, gin.H{"url": url})
}
