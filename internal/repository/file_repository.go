package repository

import (
	"context"

	"github.com/pulse-crm/crm-api/internal/domain"
	"gorm.io/gorm"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *domain.File) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *FileRepository) GetByID(ctx context.Context, id int64) (*domain.File, error) {
	var file domain.File
	if err := r.db.WithContext(ctx).First(&file, "file_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// ListByUploader returns files uploaded by a profile, newest first
func (r *FileRepository) ListByUploader(ctx context.Context, profileID int64) ([]domain.File, error) {
	var files []domain.File
	err := r.db.WithContext(ctx).
		Where("uploaded_by = ?", profileID).
		Order("created_at DESC, file_id DESC").
		Find(&files).Error
	return files, err
}

func (r *FileRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	return affected(r.db.WithContext(ctx).
		Model(&domain.File{}).
		Where("file_id = ?", id).
		Updates(fields))
}

func (r *FileRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&domain.File{}, "file_id = ?", id))
}
