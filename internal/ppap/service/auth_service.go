package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Justinlulululu/PPAP-Master/internal/config"
	"github.com/Justinlulululu/PPAP-Master/internal/middleware"
	"github.com/Justinlulululu/PPAP-Master/internal/ppap/entity"
	"github.com/Justinlulululu/PPAP-Master/internal/ppap/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// 认证错误
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRefresh     = errors.New("invalid or expired refresh token")
)

// AuthService 认证服务
type AuthService struct {
	accountRepo *repository.AccountRepository
	profileRepo *repository.ProfileRepository
	rdb         *redis.Client
	cfg         *config.Config
}

// NewAuthService 创建认证服务
func NewAuthService(accountRepo *repository.AccountRepository, profileRepo *repository.ProfileRepository, rdb *redis.Client, cfg *config.Config) *AuthService {
	return &AuthService{
		accountRepo: accountRepo,
		profileRepo: profileRepo,
		rdb:         rdb,
		cfg:         cfg,
	}
}

// TokenPair Token对
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"display_name" binding:"required"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register 注册：先建账号再建档案。档案写入失败时删除账号补偿，
// 避免留下有账号无档案的孤儿状态
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*entity.Profile, *TokenPair, error) {
	if _, err := s.accountRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	id := uuid.New().String()[:32]

	account := &entity.Account{
		ID:           id,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, nil, fmt.Errorf("create account: %w", err)
	}

	profile := &entity.Profile{
		ID:         id,
		WechatName: req.DisplayName,
		Email:      req.Email,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		// 补偿：回滚已创建的账号
		if delErr := s.accountRepo.Delete(ctx, id); delErr != nil {
			return nil, nil, fmt.Errorf("create profile: %w (account cleanup also failed: %v)", err, delErr)
		}
		return nil, nil, fmt.Errorf("create profile: %w", err)
	}

	pair, err := s.generateTokenPair(ctx, profile)
	if err != nil {
		return nil, nil, fmt.Errorf("generate token: %w", err)
	}

	return profile, pair, nil
}

// Login 邮箱密码登录
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*entity.Profile, *TokenPair, error) {
	account, err := s.accountRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("find account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	profile, err := s.profileRepo.FindByID(ctx, account.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("find profile: %w", err)
	}

	pair, err := s.generateTokenPair(ctx, profile)
	if err != nil {
		return nil, nil, fmt.Errorf("generate token: %w", err)
	}

	return profile, pair, nil
}

// Refresh 用refresh token换取新的token对
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.rdb.Get(ctx, refreshKey(refreshToken)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrInvalidRefresh
		}
		return nil, fmt.Errorf("lookup refresh token: %w", err)
	}

	profile, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}

	// 旧refresh token作废，换发新对
	s.rdb.Del(ctx, refreshKey(refreshToken))
	return s.generateTokenPair(ctx, profile)
}

// Logout 登出：清除会话状态，吊销refresh token
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	token, err := s.rdb.Get(ctx, userRefreshSetKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("lookup session: %w", err)
	}

	keys := []string{userRefreshSetKey(userID)}
	if token != "" {
		keys = append(keys, refreshKey(token))
	}
	return s.rdb.Del(ctx, keys...).Err()
}

// GetCurrentUser 获取当前用户档案
func (s *AuthService) GetCurrentUser(ctx context.Context, userID string) (*entity.Profile, error) {
	return s.profileRepo.FindByID(ctx, userID)
}

// generateTokenPair 生成JWT access token与存于Redis的refresh token
func (s *AuthService) generateTokenPair(ctx context.Context, profile *entity.Profile) (*TokenPair, error) {
	now := time.Now()
	expiresIn := s.cfg.JWT.AccessTokenExpire

	claims := middleware.JWTClaims{
		UserID: profile.ID,
		Name:   profile.WechatName,
		Email:  profile.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID,
			Issuer:    s.cfg.JWT.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, err
	}

	refreshToken := uuid.New().String()
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, refreshKey(refreshToken), profile.ID, s.cfg.JWT.RefreshTokenExpire)
	pipe.Set(ctx, userRefreshSetKey(profile.ID), refreshToken, s.cfg.JWT.RefreshTokenExpire)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(expiresIn.Seconds()),
	}, nil
}

func refreshKey(token string) string {
	return "ppap:refresh:" + token
}

func userRefreshSetKey(userID string) string {
	return "ppap:user_refresh:" + userID
}
