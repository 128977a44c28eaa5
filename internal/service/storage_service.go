package service

import (
	"context"
	"lingua_backend/internal/config"
	"lingua_backend/internal/model"
	"lingua_backend/internal/util"
	"lingua_backend/pkg/logger"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

const audioPrefix = "audio"

// StorageProvider 练习音频的访问地址
type StorageProvider interface {
	GetURL(ctx context.Context, filename string) (string, error)
}

// LocalStorageProvider 本地存储，由静态路由提供文件
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) GetURL(_ context.Context, filename string) (string, error) {
	return "/media/" + path.Join(audioPrefix, filename), nil
}

// MinioStorageProvider MinIO存储实现，返回预签名地址
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) expiry() time.Duration {
	if p.Config.PresignMins <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(p.Config.PresignMins) * time.Minute
}

func (p *MinioStorageProvider) GetURL(ctx context.Context, filename string) (string, error) {
	u, err := p.Client.PresignedGetObject(ctx, p.Config.MinioBucket, path.Join(audioPrefix, filename), p.expiry(), nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// StorageService 存储服务
type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	if cfg.Storage.Type == util.StorageMinio {
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Warn("minio unavailable, falling back to local storage", zap.Error(err))
		} else {
			provider = p
		}
	}

	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	return &StorageService{Provider: provider}
}

// AudioURL 听力和口语练习的音频地址，其余类型或无音频时为空
func (s *StorageService) AudioURL(ctx context.Context, ex *model.Exercise) string {
	if ex.AudioFile == "" {
		return ""
	}
	if ex.Type != model.ExerciseListen && ex.Type != model.ExerciseSpeak {
		return ""
	}

	url, err := s.Provider.GetURL(ctx, strings.TrimPrefix(ex.AudioFile, "/"))
	if err != nil {
		logger.Log.Warn("audio url failed",
			zap.Uint("exercise_id", ex.ID),
			zap.String("file", ex.AudioFile),
			zap.Error(err))
		return ""
	}
	return url
}
