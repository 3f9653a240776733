package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/auth"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/config"
	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/user"
)

// UserService 用户服务：注册/登录/档案/附近邻居，后台用户管理也走这里
type UserService struct {
	repo user.Repository
	jwt  *config.JWTConfig
}

// NewUserService 创建用户服务
func NewUserService(repo user.Repository, jwt *config.JWTConfig) *UserService {
	return &UserService{repo: repo, jwt: jwt}
}

func hashPassword(raw, salt string) string {
	h := sha256.Sum256([]byte(raw + salt))
	return hex.EncodeToString(h[:])
}

func newSalt() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// RegisterInput 注册入参
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string

	Building        string
	Floor           string
	ApartmentNumber string
	Longitude       float64
	Latitude        float64
}

// Register 注册，默认角色 both（既能买也能卖）
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*user.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name/email/password required", ErrBadInput)
	}
	u := &user.User{
		Name:            in.Name,
		Email:           in.Email,
		Phone:           in.Phone,
		Role:            user.RoleBoth,
		Salt:            newSalt(),
		Building:        in.Building,
		Floor:           in.Floor,
		ApartmentNumber: in.ApartmentNumber,
		Longitude:       in.Longitude,
		Latitude:        in.Latitude,
	}
	u.Password = hashPassword(in.Password, u.Salt)
	if err := s.repo.Create(ctx, u); err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}
	return u, nil
}

// Login 登录并返回 JWT
func (s *UserService) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrNotFound
		}
		GetMonitor().RecordDBError()
		return "", nil, err
	}
	if hashPassword(password, u.Salt) != u.Password {
		return "", nil, ErrForbidden
	}
	token, err := auth.GenerateToken(s.jwt, u.ID, u.Name, u.Role)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// GetByID 查用户
func (s *UserService) GetByID(ctx context.Context, id int64) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		GetMonitor().RecordDBError()
		return nil, err
	}
	return u, nil
}

// UpdateProfileInput 档案更新入参，nil 字段不改
type UpdateProfileInput struct {
	Name            *string
	Phone           *string
	Building        *string
	Floor           *string
	ApartmentNumber *string
	Longitude       *float64
	Latitude        *float64
}

// UpdateProfile 自助更新档案
func (s *UserService) UpdateProfile(ctx context.Context, id int64, in UpdateProfileInput) (*user.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if in.Building != nil {
		u.Building = *in.Building
	}
	if in.Floor != nil {
		u.Floor = *in.Floor
	}
	if in.ApartmentNumber != nil {
		u.ApartmentNumber = *in.ApartmentNumber
	}
	if in.Longitude != nil {
		u.Longitude = *in.Longitude
	}
	if in.Latitude != nil {
		u.Latitude = *in.Latitude
	}
	if err := s.repo.Update(ctx, u); err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}
	return u, nil
}

// SubmitVerification 上传实名材料，等待后台审核置位
func (s *UserService) SubmitVerification(ctx context.Context, id int64, documentPath string) (*user.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.VerificationDocument = documentPath
	if err := s.repo.Update(ctx, u); err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}
	return u, nil
}

// ListNearby 附近邻居，排除自己
func (s *UserService) ListNearby(ctx context.Context, actorID int64, lng, lat, maxDistance float64) ([]*user.User, error) {
	if maxDistance <= 0 {
		maxDistance = 1000
	}
	list, err := s.repo.ListNearby(ctx, lng, lat, maxDistance, actorID, 20)
	if err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}
	return list, nil
}

// ---------- 后台用户管理 ----------

// ListAll 全部用户
func (s *UserService) ListAll(ctx context.Context) ([]*user.User, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		GetMonitor().RecordDBError()
		return nil, err
	}
	return list, nil
}

// UpdateRole 调整用户角色
func (s *UserService) UpdateRole(ctx context.Context, id int64, role string) (*user.User, error) {
	if !user.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrBadInput, role)
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		GetMonitor().RecordDBError()
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// SetVerified 审核实名材料
func (s *UserService) SetVerified(ctx context.Context, id int64, verified bool) (*user.User, error) {
	if err := s.repo.SetVerified(ctx, id, verified); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		GetMonitor().RecordDBError()
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete 删除用户
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		GetMonitor().RecordDBError()
		return err
	}
	return nil
}
