package member

import (
	"context"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/domain"
	"github.com/openshelf/openshelf/internal/pkg"
)

var (
	memberSearchFields = []string{"name", "email"}
	memberSortFields   = map[string]string{
		"name":       "name",
		"email":      "email",
		"created_at": "created_at",
	}
)

// memberRepository implements domain.MemberRepository using GORM.
type memberRepository struct {
	db *gorm.DB
}

// NewRepository creates a MemberRepository backed by the given database.
func NewRepository(db *gorm.DB) domain.MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		return pkg.MapDBError(err)
	}
	return nil
}

func (r *memberRepository) GetByID(ctx context.Context, id uint) (*domain.Member, error) {
	var member domain.Member
	if err := r.db.WithContext(ctx).First(&member, id).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &member, nil
}

func (r *memberRepository) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	var member domain.Member
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&member).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &member, nil
}

func (r *memberRepository) List(ctx context.Context, q domain.ListQuery) (*domain.PageResult[domain.Member], error) {
	result, err := pkg.Paginate[domain.Member](r.db.WithContext(ctx), q, memberSearchFields, memberSortFields)
	if err != nil {
		return nil, pkg.MapDBError(err)
	}
	return result, nil
}

func (r *memberRepository) Update(ctx context.Context, member *domain.Member) error {
	if err := r.db.WithContext(ctx).Save(member).Error; err != nil {
		return pkg.MapDBError(err)
	}
	return nil
}

func (r *memberRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Member{}, id)
	if result.Error != nil {
		return pkg.MapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFound("member not found")
	}
	return nil
}
