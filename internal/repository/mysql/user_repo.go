package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/tranthanhphuc81-sudo/cho-cu-dan/internal/datamodels/user"
)

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var u user.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *user.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) Update(ctx context.Context, u *user.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *userRepo) ListAll(ctx context.Context) ([]*user.User, error) {
	var list []*user.User
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *userRepo) ListNearby(ctx context.Context, lng, lat, maxDistance float64, excludeID int64, limit int) ([]*user.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var list []*user.User
	// MySQL 的 ST_Distance_Sphere 按米计算球面距离
	err := r.db.WithContext(ctx).Raw(`
		SELECT * FROM users
		WHERE id <> ?
		  AND ST_Distance_Sphere(POINT(longitude, latitude), POINT(?, ?)) <= ?
		ORDER BY ST_Distance_Sphere(POINT(longitude, latitude), POINT(?, ?)) ASC
		LIMIT ?`,
		excludeID, lng, lat, maxDistance, lng, lat, limit,
	).Scan(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *userRepo) UpdateRole(ctx context.Context, id int64, role string) error {
	// MySQL 对无变化的 UPDATE 报 0 行，不能拿 RowsAffected 判存在性
	if err := r.db.WithContext(ctx).Select("id").First(&user.User{}, id).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&user.User{}).Where("id = ?", id).Update("role", role).Error
}

func (r *userRepo) SetVerified(ctx context.Context, id int64, verified bool) error {
	if err := r.db.WithContext(ctx).Select("id").First(&user.User{}, id).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&user.User{}).Where("id = ?", id).Update("is_verified", verified).Error
}

func (r *userRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&user.User{}, id).Error
}
