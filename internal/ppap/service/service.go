package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/Justinlulululu/PPAP-Master/internal/config"
	"github.com/Justinlulululu/PPAP-Master/internal/ppap/entity"
	"github.com/Justinlulululu/PPAP-Master/internal/ppap/repository"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
)

// Services 服务集合
type Services struct {
	Auth    *AuthService
	Profile *ProfileService
	Project *ProjectService
	Export  *ExportService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config) *Services {
	// 初始化MinIO客户端
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			// MinIO不可用时头像上传降级报错，其余功能不受影响
			minioClient = nil
		}
	}

	return &Services{
		Auth:    NewAuthService(repos.Account, repos.Profile, rdb, cfg),
		Profile: NewProfileService(repos.Profile, minioClient, cfg.MinIO),
		Project: NewProjectService(repos.Project),
		Export:  NewExportService(repos.Project),
	}
}

// ProfileService 用户档案服务
type ProfileService struct {
	repo        *repository.ProfileRepository
	minioClient *minio.Client
	minioCfg    config.MinIOConfig
}

// NewProfileService 创建用户档案服务
func NewProfileService(repo *repository.ProfileRepository, minioClient *minio.Client, minioCfg config.MinIOConfig) *ProfileService {
	return &ProfileService{
		repo:        repo,
		minioClient: minioClient,
		minioCfg:    minioCfg,
	}
}

// ListAssignable 获取全部可指派用户，按显示名排序
func (s *ProfileService) ListAssignable(ctx context.Context) ([]entity.Profile, error) {
	return s.repo.ListAssignable(ctx)
}

// Search 搜索用户（按微信名/邮箱模糊匹配）
func (s *ProfileService) Search(ctx context.Context, query string) ([]entity.Profile, error) {
	return s.repo.Search(ctx, query)
}

// Get 获取用户档案
func (s *ProfileService) Get(ctx context.Context, id string) (*entity.Profile, error) {
	return s.repo.FindByID(ctx, id)
}

// UploadAvatar 上传头像到MinIO并更新档案
func (s *ProfileService) UploadAvatar(ctx context.Context, userID, filename, contentType string, size int64, reader io.Reader) (string, error) {
	if s.minioClient == nil {
		return "", fmt.Errorf("object storage is not configured")
	}

	objectName := fmt.Sprintf("avatars/%s/%s%s",
		userID, uuid.New().String()[:8], filepath.Ext(filename))

	_, err := s.minioClient.PutObject(ctx, s.minioCfg.Bucket, objectName, reader, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}

	avatarURL := fmt.Sprintf("%s/%s/%s", s.minioCfg.PublicURL, s.minioCfg.Bucket, objectName)
	if err := s.repo.UpdateAvatar(ctx, userID, avatarURL); err != nil {
		return "", fmt.Errorf("update avatar: %w", err)
	}

	return avatarURL, nil
}
