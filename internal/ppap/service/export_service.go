package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Justinlulululu/PPAP-Master/internal/ppap/entity"
	"github.com/Justinlulululu/PPAP-Master/internal/ppap/repository"
	"github.com/xuri/excelize/v2"
)

// ExportService 项目台账导出服务
type ExportService struct {
	projectRepo *repository.ProjectRepository
}

// NewExportService 创建导出服务
func NewExportService(projectRepo *repository.ProjectRepository) *ExportService {
	return &ExportService{projectRepo: projectRepo}
}

var exportHeaders = []string{
	"项目编号", "项目名称", "销售负责人", "研发负责人", "组装负责人",
	"状态", "进度(%)", "开始日期", "目标日期", "备注", "创建人", "创建时间",
}

// ExportProjects 导出项目台账为xlsx，status为空导出全部
func (s *ExportService) ExportProjects(ctx context.Context, status string) (*excelize.File, error) {
	projects, err := s.projectRepo.FindAll(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Projects"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i, p := range projects {
		row := i + 2
		values := []interface{}{
			p.ProjectNumber,
			p.ProjectName,
			managerName(p.SalesManager),
			managerName(p.RDManager),
			managerName(p.AssemblyManager),
			p.Status,
			p.ProgressPercentage,
			formatDate(p.StartDate),
			formatDate(p.TargetDate),
			p.Notes,
			managerName(p.Creator),
			p.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}

	return f, nil
}

func managerName(p *entity.Profile) string {
	if p == nil {
		return ""
	}
	return p.DisplayName()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
