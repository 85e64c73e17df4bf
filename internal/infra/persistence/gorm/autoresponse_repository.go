package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cordi-chat/internal/domain"
	"cordi-chat/internal/repository"
)

// GormAutoResponseRepository 是 AutoResponseRepository 接口的 GORM 实现
type GormAutoResponseRepository struct {
	db *gorm.DB
}

// NewGormAutoResponseRepository 创建 GormAutoResponseRepository 实例
func NewGormAutoResponseRepository(db *gorm.DB) *GormAutoResponseRepository {
	if db == nil {
		panic("database connection cannot be nil for GormAutoResponseRepository")
	}
	return &GormAutoResponseRepository{db: db}
}

// FindExact 精确匹配 question，不区分大小写
func (r *GormAutoResponseRepository) FindExact(ctx context.Context, text string) (*domain.AutoResponse, error) {
	var entry domain.AutoResponse
	err := r.db.WithContext(ctx).Where("LOWER(question) = LOWER(?)", text).Order("id ASC").Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAutoResponseNotFound
		}
		return nil, fmt.Errorf("gorm: find auto response by question: %w", err)
	}
	return &entry, nil
}

// FindContainedIn 查找被 text 包含的 question，最长的优先，不区分大小写。
func (r *GormAutoResponseRepository) FindContainedIn(ctx context.Context, text string) (*domain.AutoResponse, error) {
	var entry domain.AutoResponse
	err := r.db.WithContext(ctx).
		Where(substringExpr(r.db), text).
		Where("question <> ''").
		Order("LENGTH(question) DESC").
		Order("id ASC").
		Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAutoResponseNotFound
		}
		return nil, fmt.Errorf("gorm: find auto response contained in text: %w", err)
	}
	return &entry, nil
}

// substringExpr 返回 "参数包含 question" 的 SQL 条件，按方言选择函数。
func substringExpr(db *gorm.DB) string {
	if db.Dialector != nil && db.Dialector.Name() == "postgres" {
		return "STRPOS(LOWER(?), LOWER(question)) > 0"
	}
	// MySQL 与 SQLite 都支持 INSTR(str, substr)
	return "INSTR(LOWER(?), LOWER(question)) > 0"
}

// FindByID 根据 ID 查找
func (r *GormAutoResponseRepository) FindByID(ctx context.Context, id uint) (*domain.AutoResponse, error) {
	var entry domain.AutoResponse
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAutoResponseNotFound
		}
		return nil, fmt.Errorf("gorm: find auto response %d: %w", id, err)
	}
	return &entry, nil
}

// List 列出全部条目
func (r *GormAutoResponseRepository) List(ctx context.Context) ([]domain.AutoResponse, error) {
	entries := make([]domain.AutoResponse, 0)
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("gorm: list auto responses: %w", err)
	}
	return entries, nil
}

// Upsert 按 question 插入或更新 response，完成后用库中的记录回填 entry。
func (r *GormAutoResponseRepository) Upsert(ctx context.Context, entry *domain.AutoResponse) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "question"}},
		DoUpdates: clause.AssignmentColumns([]string{"response"}),
	}).Create(entry).Error
	if err != nil {
		return fmt.Errorf("gorm: upsert auto response '%s': %w", entry.Question, err)
	}
	// MySQL 走更新分支时不会回填自增 ID
	var stored domain.AutoResponse
	if err := r.db.WithContext(ctx).Where("question = ?", entry.Question).Take(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrAutoResponseNotFound
		}
		return fmt.Errorf("gorm: reload auto response '%s': %w", entry.Question, err)
	}
	*entry = stored
	return nil
}

// Update 按 ID 更新
func (r *GormAutoResponseRepository) Update(ctx context.Context, entry *domain.AutoResponse) error {
	if _, err := r.FindByID(ctx, entry.ID); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Model(&domain.AutoResponse{}).
		Where("id = ?", entry.ID).
		Updates(map[string]interface{}{"question": entry.Question, "response": entry.Response}).Error
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: update auto response %d: %w", entry.ID, err)
	}
	return nil
}

// Delete 按 ID 删除
func (r *GormAutoResponseRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.AutoResponse{}, id)
	if result.Error != nil {
		return fmt.Errorf("gorm: delete auto response %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrAutoResponseNotFound
	}
	return nil
}
