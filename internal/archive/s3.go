// Package archive 把导出数据归档到 S3
package archive

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"decision-console/internal/config"
	"decision-console/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bytedance/sonic"
)

// Putter s3.Client 的子集
type Putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Archiver struct {
	client Putter
	bucket string
	prefix string
	now    func() time.Time
}

func NewS3Archiver(client Putter, bucket, prefix string) *S3Archiver {
	return &S3Archiver{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
	}
}

// NewFromConfig 凭证取 AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY / AWS_SESSION_TOKEN
func NewFromConfig(cfg config.ExportConfig) *S3Archiver {
	opts := s3.Options{
		Region: cfg.S3Region,
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
				SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
				SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
				Source:          "environment",
			}, nil
		}),
	}
	if cfg.S3Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.S3Endpoint)
		opts.UsePathStyle = true
	}
	return NewS3Archiver(s3.New(opts), cfg.S3Bucket, cfg.S3Prefix)
}

// Key 归档对象名：<prefix><session>/<时间戳>.<format>
func (a *S3Archiver) Key(sessionID, format string) string {
	if format == "" {
		format = "json"
	}
	if sessionID == "" {
		sessionID = "cli"
	}
	ts := a.now().UTC().Format("20060102T150405Z")
	return fmt.Sprintf("%s%s/%s.%s", a.prefix, sessionID, ts, strings.ToLower(format))
}

// Put 上传导出数据，返回 s3:// 地址
func (a *S3Archiver) Put(ctx context.Context, key string, payload *model.ExportPayload) (string, error) {
	body, err := sonic.ConfigStd.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("序列化导出数据失败: %w", err)
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("上传导出数据失败: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", a.bucket, key), nil
}
