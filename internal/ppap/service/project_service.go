package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Justinlulululu/PPAP-Master/internal/ppap/entity"
	"github.com/Justinlulululu/PPAP-Master/internal/ppap/repository"
	"github.com/google/uuid"
)

// ErrProjectNumberTaken 项目编号重复
var ErrProjectNumberTaken = errors.New("project number already exists")

// ProjectService PPAP项目服务
type ProjectService struct {
	projectRepo *repository.ProjectRepository
}

// NewProjectService 创建项目服务
func NewProjectService(projectRepo *repository.ProjectRepository) *ProjectService {
	return &ProjectService{projectRepo: projectRepo}
}

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	ProjectNumber      string     `json:"project_number" binding:"required"`
	ProjectName        string     `json:"project_name" binding:"required"`
	SalesManagerID     string     `json:"sales_manager_id"`
	RDManagerID        string     `json:"rd_manager_id"`
	AssemblyManagerID  string     `json:"assembly_manager_id"`
	Status             string     `json:"status" binding:"omitempty,oneof=draft in_progress completed on_hold"`
	ProgressPercentage int        `json:"progress_percentage" binding:"gte=0,lte=100"`
	StartDate          *time.Time `json:"start_date"`
	TargetDate         *time.Time `json:"target_date"`
	Notes              string     `json:"notes"`
}

// UpdateProjectRequest 更新项目请求。表单整体提交，项目编号不在其中
type UpdateProjectRequest struct {
	ProjectName        string     `json:"project_name" binding:"required"`
	SalesManagerID     string     `json:"sales_manager_id"`
	RDManagerID        string     `json:"rd_manager_id"`
	AssemblyManagerID  string     `json:"assembly_manager_id"`
	Status             string     `json:"status" binding:"required,oneof=draft in_progress completed on_hold"`
	ProgressPercentage int        `json:"progress_percentage" binding:"gte=0,lte=100"`
	StartDate          *time.Time `json:"start_date"`
	TargetDate         *time.Time `json:"target_date"`
	Notes              string     `json:"notes"`
}

// ProjectListResult 项目列表结果
type ProjectListResult struct {
	Items        []entity.PPAPProject `json:"items"`
	Total        int64                `json:"total"`
	StatusCounts map[string]int64     `json:"status_counts"`
}

// ListProjects 获取项目列表。status 为空返回全部；状态计数始终按
// 全量统计，保证各状态计数之和等于总数
func (s *ProjectService) ListProjects(ctx context.Context, status string) (*ProjectListResult, error) {
	projects, err := s.projectRepo.FindAll(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	counts, err := s.projectRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &ProjectListResult{
		Items:        projects,
		Total:        total,
		StatusCounts: counts,
	}, nil
}

// GetProject 获取项目详情
func (s *ProjectService) GetProject(ctx context.Context, id string) (*entity.PPAPProject, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	return project, nil
}

// CreateProject 创建项目。状态默认draft，进度默认0，创建人取当前会话用户
func (s *ProjectService) CreateProject(ctx context.Context, userID string, req *CreateProjectRequest) (*entity.PPAPProject, error) {
	taken, err := s.projectRepo.ExistsByNumber(ctx, req.ProjectNumber)
	if err != nil {
		return nil, fmt.Errorf("check project number: %w", err)
	}
	if taken {
		return nil, ErrProjectNumberTaken
	}

	status := req.Status
	if status == "" {
		status = entity.ProjectStatusDraft
	}

	now := time.Now()
	project := &entity.PPAPProject{
		ID:                 uuid.New().String()[:32],
		ProjectNumber:      req.ProjectNumber,
		ProjectName:        req.ProjectName,
		SalesManagerID:     normalizeManagerID(req.SalesManagerID),
		RDManagerID:        normalizeManagerID(req.RDManagerID),
		AssemblyManagerID:  normalizeManagerID(req.AssemblyManagerID),
		Status:             status,
		ProgressPercentage: req.ProgressPercentage,
		StartDate:          req.StartDate,
		TargetDate:         req.TargetDate,
		Notes:              req.Notes,
		CreatedBy:          userID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	// 返回带负责人解析的完整记录
	return s.projectRepo.FindByID(ctx, project.ID)
}

// UpdateProject 更新项目。整表单覆盖写，项目编号不可变
func (s *ProjectService) UpdateProject(ctx context.Context, id string, req *UpdateProjectRequest) (*entity.PPAPProject, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}

	project.ProjectName = req.ProjectName
	project.SalesManagerID = normalizeManagerID(req.SalesManagerID)
	project.RDManagerID = normalizeManagerID(req.RDManagerID)
	project.AssemblyManagerID = normalizeManagerID(req.AssemblyManagerID)
	project.Status = req.Status
	project.ProgressPercentage = req.ProgressPercentage
	project.StartDate = req.StartDate
	project.TargetDate = req.TargetDate
	project.Notes = req.Notes
	project.UpdatedAt = time.Now()

	// 覆盖写前清掉预加载的关联，避免gorm级联保存档案
	project.SalesManager = nil
	project.RDManager = nil
	project.AssemblyManager = nil
	project.Creator = nil

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	return s.projectRepo.FindByID(ctx, id)
}

// DeleteProject 删除项目
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	return s.projectRepo.Delete(ctx, id)
}

// normalizeManagerID 空选择持久化为NULL引用而非空字符串
func normalizeManagerID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
