package conversationrepo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	domain "chefgpt-server/internal/domain/conversation"
	"chefgpt-server/internal/infrastructure/database/entities"
)

// GormStore persists conversations in postgres or sqlite.
type GormStore struct {
	db *gorm.DB
}

var _ domain.Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (r *GormStore) FindByID(ctx context.Context, id string) (*domain.Conversation, error) {
	var row entities.Conversation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.EtoD(), nil
}

func (r *GormStore) FindByOwner(ctx context.Context, owner domain.OwnerID, limit int) ([]*domain.Conversation, error) {
	if owner.IsAnonymous() {
		return []*domain.Conversation{}, nil
	}

	query := r.db.WithContext(ctx).
		Where("owner_id = ?", string(owner)).
		Order("started_at DESC").
		Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []entities.Conversation
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]*domain.Conversation, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].EtoD())
	}
	return result, nil
}

func (r *GormStore) Insert(ctx context.Context, conv *domain.Conversation) error {
	err := r.db.WithContext(ctx).Create(entities.NewConversation(conv)).Error
	if isDuplicateKey(err) {
		return domain.ErrDuplicateID
	}
	return err
}

func (r *GormStore) Replace(ctx context.Context, conv *domain.Conversation) error {
	row := entities.NewConversation(conv)
	res := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ? AND version = ?", conv.ID, conv.Version).
		Updates(row.UpdateColumns())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&entities.Conversation{}).Where("id = ?", conv.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}
	conv.Version++
	return nil
}

func (r *GormStore) DeleteByID(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Conversation{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
