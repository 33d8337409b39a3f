package repository

import (
	"context"
	"errors"

	"github.com/Justinlulululu/PPAP-Master/internal/ppap/entity"
	"gorm.io/gorm"
)

// ProjectRepository PPAP项目仓库
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// withManagers 一次读取内联解析三个负责人和创建人
func (r *ProjectRepository) withManagers(query *gorm.DB) *gorm.DB {
	return query.
		Preload("SalesManager").
		Preload("RDManager").
		Preload("AssemblyManager").
		Preload("Creator")
}

// FindAll 查询项目列表，按创建时间倒序；status 为空时返回全部
func (r *ProjectRepository) FindAll(ctx context.Context, status string) ([]entity.PPAPProject, error) {
	var projects []entity.PPAPProject

	query := r.db.WithContext(ctx).Model(&entity.PPAPProject{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	err := r.withManagers(query).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

// FindByID 根据ID查找项目
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*entity.PPAPProject, error) {
	var project entity.PPAPProject
	err := r.withManagers(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

// ExistsByNumber 项目编号是否已存在
func (r *ProjectRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.PPAPProject{}).
		Where("project_number = ?", number).
		Count(&count).Error
	return count > 0, err
}

// Create 创建项目
func (r *ProjectRepository) Create(ctx context.Context, project *entity.PPAPProject) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// Update 更新项目。project_number 创建后不可变，created_by/created_at 同样不参与更新
func (r *ProjectRepository) Update(ctx context.Context, project *entity.PPAPProject) error {
	return r.db.WithContext(ctx).
		Model(project).
		Select("*").
		Omit("project_number", "created_by", "created_at").
		Updates(project).Error
}

// Delete 删除项目
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.PPAPProject{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStatus 按状态统计项目数，单次分组查询
func (r *ProjectRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}

	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&entity.PPAPProject{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(entity.ProjectStatuses))
	for _, s := range entity.ProjectStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
