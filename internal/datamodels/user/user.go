package user

import (
	"context"
	"time"
)

// 用户角色
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleBoth   = "both"
	RoleAdmin  = "admin"
)

// ValidRole 校验角色取值
func ValidRole(role string) bool {
	switch role {
	case RoleBuyer, RoleSeller, RoleBoth, RoleAdmin:
		return true
	}
	return false
}

// User 用户模型，地址为楼栋/楼层/房号三段（社区场景没有街道地址）
type User struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:64;not null" json:"name"`
	Email    string `gorm:"uniqueIndex;size:128;not null" json:"email"`
	Phone    string `gorm:"size:32" json:"phone"`
	Password string `gorm:"size:255;not null" json:"-"` // 已加密密码
	Salt     string `gorm:"size:64" json:"-"`
	Role     string `gorm:"size:16;index;not null;default:buyer" json:"role"`

	IsVerified           bool   `gorm:"not null;default:false" json:"isVerified"`
	VerificationDocument string `gorm:"size:255" json:"verificationDocument,omitempty"`

	Building        string `gorm:"size:32" json:"building"`
	Floor           string `gorm:"size:16" json:"floor"`
	ApartmentNumber string `gorm:"size:16" json:"apartmentNumber"`

	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`

	Rating float64 `gorm:"not null;default:0" json:"rating"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Public 去掉敏感字段后的展示视图（会话列表、订单详情里嵌入）
type Public struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// PublicView 转为展示视图
func (u *User) PublicView() Public {
	return Public{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

// Repository 用户仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	ListAll(ctx context.Context) ([]*User, error)
	// ListNearby 按球面距离筛选附近用户，excludeID 排除自己
	ListNearby(ctx context.Context, lng, lat, maxDistance float64, excludeID int64, limit int) ([]*User, error)
	UpdateRole(ctx context.Context, id int64, role string) error
	SetVerified(ctx context.Context, id int64, verified bool) error
	Delete(ctx context.Context, id int64) error
}
