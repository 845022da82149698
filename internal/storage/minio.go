// Package storage 封装 MinIO：上传头像、保存导出的 PDF、生成下载链接与清理过期对象。
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"resumeBuilder/internal/config"
)

// ErrObjectTooLarge 表示对象超过读取上限。
var ErrObjectTooLarge = errors.New("object exceeds size limit")

// Client 封装内部与公网两个 MinIO 客户端。
type Client struct {
	internalClient *minio.Client
	publicClient   *minio.Client
	publicBase     *url.URL
	bucketName     string
}

// ObjectMeta 描述 Bucket 中对象的关键信息。
type ObjectMeta struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// NewClient 根据配置初始化 MinIO 客户端，并确保目标 Bucket 存在。
func NewClient(ctx context.Context, cfg config.MinIOConfig) (*Client, error) {
	var bucketLookup minio.BucketLookupType
	switch strings.ToLower(strings.TrimSpace(cfg.BucketLookup)) {
	case "", "auto":
		bucketLookup = minio.BucketLookupAuto
	case "dns":
		bucketLookup = minio.BucketLookupDNS
	case "path":
		bucketLookup = minio.BucketLookupPath
	default:
		return nil, fmt.Errorf("invalid minio bucket lookup %q", cfg.BucketLookup)
	}

	creds := credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	internalClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:        creds,
		Secure:       cfg.UseSSL,
		Region:       cfg.Region,
		BucketLookup: bucketLookup,
	})
	if err != nil {
		return nil, fmt.Errorf("init internal minio client: %w", err)
	}

	publicBase, err := url.Parse(cfg.PublicEndpoint)
	if err != nil {
		return nil, fmt.Errorf("parse minio public endpoint: %w", err)
	}
	if publicBase.Host == "" {
		return nil, errors.New("invalid minio public endpoint, host missing")
	}

	publicClient, err := minio.New(publicBase.Host, &minio.Options{
		Creds:        creds,
		Secure:       publicBase.Scheme == "https",
		Region:       cfg.Region,
		BucketLookup: bucketLookup,
	})
	if err != nil {
		return nil, fmt.Errorf("init public minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := internalClient.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if !cfg.AutoCreate {
			return nil, fmt.Errorf("bucket %q does not exist (auto create disabled)", cfg.Bucket)
		}
		if err := internalClient.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &Client{
		internalClient: internalClient,
		publicClient:   publicClient,
		publicBase:     publicBase,
		bucketName:     cfg.Bucket,
	}, nil
}

// Upload 上传对象并返回稳定的访问地址。
func (c *Client) Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error) {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := c.internalClient.PutObject(ctx, c.bucketName, objectKey, reader, size, opts); err != nil {
		return "", fmt.Errorf("put object %q: %w", objectKey, err)
	}
	return c.ObjectURL(objectKey), nil
}

// ObjectURL 返回 <public endpoint>/<bucket>/<key>。
func (c *Client) ObjectURL(objectKey string) string {
	u := *c.publicBase
	u.Path = path.Join("/", u.Path, c.bucketName, objectKey)
	return u.String()
}

// KeyFromURL 识别指向本 Bucket 的地址并返回对象键。
func (c *Client) KeyFromURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || !strings.EqualFold(u.Host, c.publicBase.Host) {
		return "", false
	}
	prefix := path.Join("/", c.publicBase.Path, c.bucketName) + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(u.Path, prefix)
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}

// ReadObject 读取对象内容，超过 limit 字节时返回 ErrObjectTooLarge。
func (c *Client) ReadObject(ctx context.Context, objectKey string, limit int64) ([]byte, string, error) {
	obj, err := c.internalClient.GetObject(ctx, c.bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("get object %q: %w", objectKey, err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return nil, "", fmt.Errorf("stat object %q: %w", objectKey, err)
	}
	if limit > 0 && info.Size > limit {
		return nil, "", ErrObjectTooLarge
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj); err != nil {
		return nil, "", fmt.Errorf("read object %q: %w", objectKey, err)
	}
	return buf.Bytes(), info.ContentType, nil
}

// PresignedURL 生成限时下载链接，filename 非空时设置下载文件名。
func (c *Client) PresignedURL(ctx context.Context, objectKey string, ttl time.Duration, filename string) (string, error) {
	var params url.Values
	if filename != "" {
		params = url.Values{}
		params.Set("response-content-disposition", attachment(filename))
	}
	presigned, err := c.publicClient.PresignedGetObject(ctx, c.bucketName, objectKey, ttl, params)
	if err != nil {
		return "", fmt.Errorf("generate presigned url for %q: %w", objectKey, err)
	}
	return presigned.String(), nil
}

// attachment 按 RFC 2231 编码非 ASCII 文件名。
func attachment(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}

// ListOlderThan 列出前缀下早于 cutoff 的对象。
func (c *Client) ListOlderThan(ctx context.Context, prefix string, cutoff time.Time) ([]ObjectMeta, error) {
	objCh := c.internalClient.ListObjects(ctx, c.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	var result []ObjectMeta
	for object := range objCh {
		if object.Err != nil {
			return nil, fmt.Errorf("list objects under %q: %w", prefix, object.Err)
		}
		if object.LastModified.Before(cutoff) {
			result = append(result, ObjectMeta{
				Key:          object.Key,
				Size:         object.Size,
				LastModified: object.LastModified,
			})
		}
	}
	return result, nil
}

// DeleteObject 删除指定对象，对象不存在视为成功。
func (c *Client) DeleteObject(ctx context.Context, objectKey string) error {
	objectKey = strings.TrimSpace(objectKey)
	if objectKey == "" {
		return nil
	}
	if err := c.internalClient.RemoveObject(ctx, c.bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		if IsNoSuchKey(err) {
			return nil
		}
		return fmt.Errorf("remove object %q: %w", objectKey, err)
	}
	return nil
}

// DeletePrefix 删除前缀下的全部对象，删除简历时清理其导出文件。
func (c *Client) DeletePrefix(ctx context.Context, prefix string) error {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil
	}

	objects, err := c.ListOlderThan(ctx, prefix, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	var errs []error
	for _, obj := range objects {
		if err := c.DeleteObject(ctx, obj.Key); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 1 {
		slog.Default().Error("delete minio objects under prefix failed",
			slog.String("prefix", prefix),
			slog.Int("failed_count", len(errs)),
		)
	}
	return errors.Join(errs...)
}
