package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Justinlulululu/PPAP-Master/internal/ppap/entity"
	"github.com/Justinlulululu/PPAP-Master/internal/ppap/repository"
	"github.com/Justinlulululu/PPAP-Master/internal/ppap/service"
	"github.com/gin-gonic/gin"
)

// ProjectHandler PPAP项目处理器
type ProjectHandler struct {
	svc       *service.ProjectService
	exportSvc *service.ExportService
}

// NewProjectHandler 创建项目处理器
func NewProjectHandler(svc *service.ProjectService, exportSvc *service.ExportService) *ProjectHandler {
	return &ProjectHandler{svc: svc, exportSvc: exportSvc}
}

// ListProjects 获取项目列表（含负责人与状态计数）
// GET /api/v1/projects?status=
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	status := c.Query("status")
	if status != "" && status != "all" && !entity.IsValidProjectStatus(status) {
		BadRequest(c, "Invalid status filter: "+status)
		return
	}
	if status == "all" {
		status = ""
	}

	result, err := h.svc.ListProjects(c.Request.Context(), status)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, result)
}

// GetProject 获取项目详情
// GET /api/v1/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Project ID is required")
		return
	}

	project, err := h.svc.GetProject(c.Request.Context(), id)
	if err != nil {
		NotFound(c, "Project not found")
		return
	}

	Success(c, project)
}

// CreateProject 创建项目
// POST /api/v1/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req service.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	userID := GetUserID(c)
	project, err := h.svc.CreateProject(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrProjectNumberTaken) {
			Conflict(c, err.Error())
			return
		}
		InternalError(c, err.Error())
		return
	}

	Created(c, project)
}

// UpdateProject 更新项目（项目编号不可变）
// PUT /api/v1/projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Project ID is required")
		return
	}

	var req service.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	project, err := h.svc.UpdateProject(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "Project not found")
			return
		}
		InternalError(c, err.Error())
		return
	}

	Success(c, project)
}

// DeleteProject 删除项目
// DELETE /api/v1/projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Project ID is required")
		return
	}

	if err := h.svc.DeleteProject(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "Project not found")
			return
		}
		InternalError(c, err.Error())
		return
	}

	Success(c, nil)
}

// ExportProjects 导出项目台账
// GET /api/v1/projects/export?status=
func (h *ProjectHandler) ExportProjects(c *gin.Context) {
	status := c.Query("status")
	if status != "" && status != "all" && !entity.IsValidProjectStatus(status) {
		BadRequest(c, "Invalid status filter: "+status)
		return
	}
	if status == "all" {
		status = ""
	}

	file, err := h.exportSvc.ExportProjects(c.Request.Context(), status)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	filename := fmt.Sprintf("ppap-projects-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
