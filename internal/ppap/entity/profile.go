package entity

import (
	"time"
)

// Account 认证账号实体（身份凭证，与 Profile 同ID）
type Account struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	Email        string    `json:"email" gorm:"size:128;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"size:128;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

// Profile 用户档案实体，可被指派为项目负责人
type Profile struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	WechatID     string    `json:"wechat_id" gorm:"size:64"`
	WechatName   string    `json:"wechat_name" gorm:"size:64"`
	WechatAvatar string    `json:"wechat_avatar" gorm:"size:512"`
	Email        string    `json:"email" gorm:"size:128;index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// DisplayName 显示名称，微信名优先，其次邮箱
func (p *Profile) DisplayName() string {
	if p.WechatName != "" {
		return p.WechatName
	}
	return p.Email
}
