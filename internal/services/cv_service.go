package services

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cv-analyzer/config"
	"cv-analyzer/internal/storage"
	apperrors "cv-analyzer/pkg/errors"
)

// UploadResult is returned after a CV file is accepted into storage.
type UploadResult struct {
	CVID       string    `json:"cv_id"`
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// CVService validates and stores uploaded CV documents.
type CVService struct {
	store storage.Store
	cfg   *config.UploadConfig
	log   *zap.Logger
}

func NewCVService(store storage.Store, cfg *config.UploadConfig, log *zap.Logger) *CVService {
	return &CVService{store: store, cfg: cfg, log: log}
}

// Upload validates the file and writes it to the document store under a
// fresh cv id.
func (s *CVService) Upload(ctx context.Context, filename, contentType string, data []byte) (*UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !s.extensionAllowed(ext) {
		return nil, apperrors.NewError(apperrors.ErrValidation.Code,
			fmt.Sprintf("file type not allowed, allowed types: %s", strings.Join(s.cfg.AllowedExtensions, ", ")),
			http.StatusBadRequest)
	}

	size := int64(len(data))
	if size > s.cfg.MaxFileSizeBytes() {
		return nil, apperrors.NewError(apperrors.ErrValidation.Code,
			fmt.Sprintf("file too large, max size: %dMB", s.cfg.MaxFileSizeMB),
			http.StatusBadRequest)
	}

	cvID := uuid.NewString()
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.store.Put(ctx, cvID, data, contentType, filename); err != nil {
		return nil, apperrors.WrapError(err, apperrors.ErrDependency.Code,
			"store cv document", http.StatusBadGateway)
	}

	s.log.Info("cv uploaded",
		zap.String("cv_id", cvID),
		zap.String("filename", filename),
		zap.Int64("size", size))

	return &UploadResult{
		CVID:       cvID,
		Filename:   filename,
		SizeBytes:  size,
		UploadedAt: time.Now().UTC(),
	}, nil
}

// Exists reports whether the document is present in storage.
func (s *CVService) Exists(ctx context.Context, cvID string) (*storage.Object, error) {
	return s.store.Get(ctx, cvID)
}

func (s *CVService) extensionAllowed(ext string) bool {
	for _, allowed := range s.cfg.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
