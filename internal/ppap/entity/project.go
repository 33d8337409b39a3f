package entity

import (
	"time"
)

// PPAPProject PPAP项目实体
type PPAPProject struct {
	ID                 string     `json:"id" gorm:"primaryKey;size:32"`
	ProjectNumber      string     `json:"project_number" gorm:"size:64;not null;uniqueIndex"`
	ProjectName        string     `json:"project_name" gorm:"size:128;not null"`
	SalesManagerID     *string    `json:"sales_manager_id" gorm:"size:32"`
	RDManagerID        *string    `json:"rd_manager_id" gorm:"size:32"`
	AssemblyManagerID  *string    `json:"assembly_manager_id" gorm:"size:32"`
	Status             string     `json:"status" gorm:"size:16;not null;default:draft"`
	ProgressPercentage int        `json:"progress_percentage" gorm:"not null;default:0"`
	StartDate          *time.Time `json:"start_date" gorm:"type:date"`
	TargetDate         *time.Time `json:"target_date" gorm:"type:date"`
	Notes              string     `json:"notes" gorm:"type:text"`
	CreatedBy          string     `json:"created_by" gorm:"size:32;not null"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// 关联
	SalesManager    *Profile `json:"sales_manager,omitempty" gorm:"foreignKey:SalesManagerID"`
	RDManager       *Profile `json:"rd_manager,omitempty" gorm:"foreignKey:RDManagerID"`
	AssemblyManager *Profile `json:"assembly_manager,omitempty" gorm:"foreignKey:AssemblyManagerID"`
	Creator         *Profile `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
}

func (PPAPProject) TableName() string {
	return "ppap_projects"
}

// ProjectStatus 项目状态
const (
	ProjectStatusDraft      = "draft"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusCompleted  = "completed"
	ProjectStatusOnHold     = "on_hold"
)

// ProjectStatuses 全部合法状态，按展示顺序
var ProjectStatuses = []string{
	ProjectStatusDraft,
	ProjectStatusInProgress,
	ProjectStatusCompleted,
	ProjectStatusOnHold,
}

// IsValidProjectStatus 校验状态取值
func IsValidProjectStatus(s string) bool {
	for _, v := range ProjectStatuses {
		if v == s {
			return true
		}
	}
	return false
}
