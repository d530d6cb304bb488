package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/candat96/mini-cis/internal/apperr"
	"github.com/candat96/mini-cis/internal/config"
	"github.com/candat96/mini-cis/internal/middleware"
	"github.com/candat96/mini-cis/internal/model/entity"
	"github.com/candat96/mini-cis/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService 账号注册与登录签发 JWT
type AuthService struct {
	repo *repository.UserRepository
	cfg  config.JWTConfig
}

func NewAuthService(repo *repository.UserRepository, cfg config.JWTConfig) *AuthService {
	return &AuthService{repo: repo, cfg: cfg}
}

type RegisterRequest struct {
	Username string          `json:"username" binding:"required,min=3,max=64"`
	Password string          `json:"password" binding:"required,min=6"`
	Name     string          `json:"name" binding:"required"`
	Email    string          `json:"email" binding:"omitempty,email"`
	Phone    string          `json:"phone"`
	Role     entity.UserRole `json:"role" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *entity.User `json:"user"`
}

// Register 注册账号，用户名/邮箱/手机号全局唯一
func (s *AuthService) Register(req RegisterRequest) (*entity.User, error) {
	if !req.Role.IsValid() {
		return nil, apperr.Validation(fmt.Sprintf("invalid role: %s", req.Role))
	}
	if exists, err := s.repo.ExistsByUsername(req.Username); err != nil {
		return nil, err
	} else if exists {
		return nil, apperr.Conflict("user", "username already taken")
	}
	if req.Email != "" {
		if exists, err := s.repo.ExistsByEmail(req.Email); err != nil {
			return nil, err
		} else if exists {
			return nil, apperr.Conflict("user", "email already taken")
		}
	}
	if req.Phone != "" {
		if exists, err := s.repo.ExistsByPhone(req.Phone); err != nil {
			return nil, err
		} else if exists {
			return nil, apperr.Conflict("user", "phone already taken")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		Username: req.Username,
		Password: string(hash),
		Name:     req.Name,
		Role:     req.Role,
	}
	// 邮箱/手机号留空时存 NULL，空串会撞唯一索引
	if req.Email != "" {
		user.Email = &req.Email
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}
	if err := s.repo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("user", "username, email or phone already taken")
		}
		return nil, err
	}
	return user, nil
}

// Login 校验口令并签发 JWT
func (s *AuthService) Login(req LoginRequest) (*LoginResult, error) {
	user, err := s.repo.GetByUsername(req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("invalid username or password")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.Unauthorized("invalid username or password")
	}

	expiresAt := time.Now().Add(s.cfg.AccessTokenExpire)
	claims := middleware.JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) GetUser(id string) (*entity.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user", id)
		}
		return nil, err
	}
	return user, nil
}

// ListDoctors 返回可开方的医生列表
func (s *AuthService) ListDoctors() ([]entity.User, error) {
	return s.repo.ListByRoles(entity.RoleDoctor)
}
