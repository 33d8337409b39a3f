package repository

import (
	"context"
	"errors"

	"github.com/Justinlulululu/PPAP-Master/internal/ppap/entity"
	"gorm.io/gorm"
)

// AccountRepository 认证账号仓库
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create 创建账号
func (r *AccountRepository) Create(ctx context.Context, account *entity.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// FindByID 根据ID查找账号
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*entity.Account, error) {
	var account entity.Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindByEmail 根据邮箱查找账号
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	var account entity.Account
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// Delete 删除账号（注册补偿用）
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Account{}).Error
}

// ProfileRepository 用户档案仓库
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create 创建档案
func (r *ProfileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// FindByID 根据ID查找档案
func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*entity.Profile, error) {
	var profile entity.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// ListAssignable 查询全部可指派用户，按显示名排序（微信名优先，空值落到邮箱）
func (r *ProfileRepository) ListAssignable(ctx context.Context) ([]entity.Profile, error) {
	var profiles []entity.Profile
	err := r.db.WithContext(ctx).
		Order("COALESCE(NULLIF(wechat_name, ''), email)").
		Find(&profiles).Error
	return profiles, err
}

// Search 搜索用户（按微信名/邮箱模糊匹配）
func (r *ProfileRepository) Search(ctx context.Context, query string) ([]entity.Profile, error) {
	var profiles []entity.Profile
	err := r.db.WithContext(ctx).
		Where("wechat_name ILIKE ? OR email ILIKE ?", "%"+query+"%", "%"+query+"%").
		Order("COALESCE(NULLIF(wechat_name, ''), email)").
		Limit(20).
		Find(&profiles).Error
	return profiles, err
}

// Update 更新档案
func (r *ProfileRepository) Update(ctx context.Context, profile *entity.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// UpdateAvatar 更新头像URL
func (r *ProfileRepository) UpdateAvatar(ctx context.Context, id, avatarURL string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Profile{}).
		Where("id = ?", id).
		Update("wechat_avatar", avatarURL)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
