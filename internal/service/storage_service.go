package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/otel/attribute"

	"vocab_quiz_backend/internal/config"
	"vocab_quiz_backend/internal/util"
	"vocab_quiz_backend/pkg/tracing"
)

// maxDocumentSize 单个文档的读取上限，超出时报错而不是截断
var maxDocumentSize int64 = 32 << 20

func readDocument(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxDocumentSize {
		return nil, fmt.Errorf("%s exceeds %d bytes: %w", name, maxDocumentSize, util.ErrDocumentTooLarge)
	}
	return data, nil
}

// StorageProvider 题库/内容文档的读取来源
type StorageProvider interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	Location(name string) string
}

// LocalStorageProvider 本地目录
type LocalStorageProvider struct {
	Config *config.DataConfig
}

func (p *LocalStorageProvider) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(p.Location(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", name, util.ErrDocumentNotFound)
		}
		return nil, err
	}
	defer f.Close()
	return readDocument(f, name)
}

func (p *LocalStorageProvider) Location(name string) string {
	return filepath.Join(p.Config.LocalPath, filepath.Clean("/"+name))
}

// HTTPStorageProvider 通过 HTTP 拉取静态文档
type HTTPStorageProvider struct {
	Config *config.DataConfig
	Client *http.Client
}

func NewHTTPStorageProvider(cfg *config.DataConfig) (*HTTPStorageProvider, error) {
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid data.base_url: %w", err)
	}
	return &HTTPStorageProvider{
		Config: cfg,
		Client: &http.Client{Timeout: cfg.FetchTimeout},
	}, nil
}

func (p *HTTPStorageProvider) Fetch(ctx context.Context, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Location(name), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", util.MimeJSON)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", name, util.ErrDocumentNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch %s: unexpected status %d", name, resp.StatusCode)
	}
	return readDocument(resp.Body, name)
}

func (p *HTTPStorageProvider) Location(name string) string {
	return strings.TrimRight(p.Config.BaseURL, "/") + "/" + strings.TrimLeft(name, "/")
}

// MinioStorageProvider MinIO 存储桶
type MinioStorageProvider struct {
	Config *config.DataConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.DataConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Fetch(ctx context.Context, name string) ([]byte, error) {
	obj, err := p.Client.GetObject(ctx, p.Config.MinioBucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := readDocument(obj, name)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%s: %w", name, util.ErrDocumentNotFound)
		}
		return nil, err
	}
	return data, nil
}

func (p *MinioStorageProvider) Location(name string) string {
	return "/" + path.Join(p.Config.MinioBucket, name)
}

// StorageService 为每次读取加超时与追踪
type StorageService struct {
	Provider StorageProvider
	Timeout  time.Duration
}

func NewStorageService(cfg *config.DataConfig) (*StorageService, error) {
	var provider StorageProvider
	switch cfg.Source {
	case util.StorageLocal, "":
		provider = &LocalStorageProvider{Config: cfg}
	case util.StorageHTTP:
		p, err := NewHTTPStorageProvider(cfg)
		if err != nil {
			return nil, err
		}
		provider = p
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(cfg)
		if err != nil {
			return nil, err
		}
		provider = p
	default:
		return nil, fmt.Errorf("%w: %s", util.ErrUnknownStorage, cfg.Source)
	}
	return &StorageService{Provider: provider, Timeout: cfg.FetchTimeout}, nil
}

func (s *StorageService) Fetch(ctx context.Context, name string) (data []byte, err error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	ctx, span := tracing.StartSpan(ctx, "storage.Fetch", attribute.String("document", name))
	defer func() { tracing.EndSpan(span, err) }()

	data, err = s.Provider.Fetch(ctx, name)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("fetch %s timed out after %s: %w", name, s.Timeout, err)
	}
	return data, err
}

func (s *StorageService) Location(name string) string {
	return s.Provider.Location(name)
}
