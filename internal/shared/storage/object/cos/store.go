// Package cos implements object storage against IBM Cloud Object Storage
// through its S3-compatible API using HMAC credentials.
package cos

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"cpl-backend/internal/shared/storage/object"
)

// Store implements ObjectStore using an S3-compatible bucket.
type Store struct {
	client *s3.Client
	bucket string
}

// Options configure the COS connection.
type Options struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

// New creates a new COS-backed object store.
func New(ctx context.Context, opts Options) (object.ObjectStore, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("cos bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load cos config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint := strings.TrimSpace(opts.Endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{client: client, bucket: opts.Bucket}, nil
}

// Put uploads the reader contents under the given key with string metadata.
func (s *Store) Put(ctx context.Context, key string, contentType string, meta object.Metadata, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if contentType == "" {
		var sniff [512]byte
		n, readErr := io.ReadFull(r, sniff[:])
		if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
			return 0, fmt.Errorf("read sniff: %w", readErr)
		}
		contentType = http.DetectContentType(sniff[:n])
		r = io.MultiReader(bytes.NewReader(sniff[:n]), r)
	}

	counter := &countingReader{r: r}
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        counter,
		ContentType: aws.String(contentType),
	}
	if len(meta) > 0 {
		input.Metadata = map[string]string(meta)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return 0, fmt.Errorf("cos put object bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return counter.n, nil
}

// Get downloads a stored object and its metadata.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, object.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, nil, object.ErrNotFound
		}
		return nil, nil, fmt.Errorf("cos get object bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return out.Body, object.Metadata(out.Metadata), nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

var _ object.ObjectStore = (*Store)(nil)
