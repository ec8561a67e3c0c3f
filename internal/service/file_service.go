package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/mapper"
	"github.com/pulse-crm/crm-api/internal/repository"
	"github.com/pulse-crm/crm-api/internal/storage"
	"go.uber.org/zap"
)

// FileService stores uploaded blobs and keeps the record pairing the visible
// name with the stored object key
type FileService struct {
	fileRepo *repository.FileRepository
	storage  storage.Storage
	logger   *zap.Logger
}

func NewFileService(fileRepo *repository.FileRepository, store storage.Storage, logger *zap.Logger) *FileService {
	return &FileService{
		fileRepo: fileRepo,
		storage:  store,
		logger:   logger,
	}
}

// Upload writes data to the shared bucket and records it under the caller
func (s *FileService) Upload(ctx context.Context, filename, contentType string, data io.Reader) (*domain.FileDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	filename = strings.TrimSpace(filepath.Base(filename))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return nil, ErrInvalidInput
	}

	key, size, err := s.storage.Upload(ctx, storage.BucketShared, filename, contentType, data)
	if err != nil {
		return nil, wrap(err, "upload file")
	}

	file := &domain.File{
		VName:       filename,
		PName:       key,
		Bucket:      storage.BucketShared,
		ContentType: contentType,
		Size:        size,
		UploadedBy:  user.ProfileID,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		if delErr := s.storage.Delete(ctx, storage.BucketShared, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned upload",
				zap.String("key", key),
				zap.Error(delErr),
			)
		}
		return nil, wrap(err, "create file record")
	}

	s.logger.Info("file uploaded",
		zap.Int64("file_id", file.ID),
		zap.String("key", key),
		zap.Int64("size", size),
	)
	dto := mapper.ToFileDTO(file)
	return &dto, nil
}

func (s *FileService) GetByID(ctx context.Context, id int64) (*domain.FileDTO, error) {
	if _, err := actor(ctx); err != nil {
		return nil, err
	}
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "get file")
	}
	dto := mapper.ToFileDTO(file)
	return &dto, nil
}

// Download opens the stored object of a file. The caller closes the reader.
func (s *FileService) Download(ctx context.Context, id int64) (io.ReadCloser, *domain.FileDTO, error) {
	if _, err := actor(ctx); err != nil {
		return nil, nil, err
	}
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, wrap(err, "get file")
	}
	reader, err := s.storage.Download(ctx, file.Bucket, file.PName)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, wrap(err, "download file")
	}
	dto := mapper.ToFileDTO(file)
	return reader, &dto, nil
}
