package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/scrapbird/hview/internal/apperrors"
)

// S3Store is the Store implementation backed by an S3-compatible HTTP API
// (AWS S3, MinIO, Ceph RGW, ...), reached over Signature V4. Only
// ListObjectsV2, HeadObject, and GetObject (with a byte Range) are used.
type S3Store struct {
	client *s3.Client
	bucket string
}

// Config carries the environment-sourced settings needed to build an
// S3Store. Region defaults to "us-east-1" when empty, matching the
// documented environment contract.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
}

// NewS3Store builds the S3-compatible client described by cfg. Fails if any
// of Endpoint/AccessKey/SecretKey/Bucket is empty, mirroring "missing any
// storage variable fails client construction".
func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("objectstore: missing required S3 configuration (endpoint/access key/secret key/bucket)")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("objectstore: loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = &cfg.Endpoint
		o.UsePathStyle = true
	})

	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3Store) List(ctx context.Context, prefix string, includeFolders bool, maxItems int) (ListResult, error) {
	normalizedPrefix := normalizePrefix(prefix)
	if maxItems <= 0 {
		maxItems = 1
	}

	var entries []Descriptor
	folderSet := make(map[string]struct{})
	truncated := false

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: &s.bucket,
		Prefix: &normalizedPrefix,
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return ListResult{}, apperrors.Backend(err, "objectstore: listing bucket with prefix %q", normalizedPrefix)
		}

		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			key := *obj.Key
			if strings.HasSuffix(key, "/") {
				if includeFolders {
					folderSet[key] = struct{}{}
				}
				continue
			}

			entries = append(entries, Descriptor{
				Key:          key,
				Size:         derefInt64(obj.Size),
				LastModified: formatTime(obj.LastModified),
				ETag:         stripETagQuotes(obj.ETag),
				Kind:         KindFile,
			})

			if includeFolders {
				for _, folder := range deriveParentFolders(key, normalizedPrefix) {
					folderSet[folder] = struct{}{}
				}
			}

			if len(entries) >= maxItems {
				truncated = true
				break
			}
		}
		if truncated {
			break
		}
	}

	if includeFolders {
		for folder := range folderSet {
			entries = append(entries, Descriptor{Key: folder, Kind: KindFolder})
		}
	}
	sortDescriptors(entries)

	return ListResult{Entries: entries, Truncated: truncated}, nil
}

func (s *S3Store) Head(ctx context.Context, key string) (HeadResult, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		if isNotFound(err) {
			return HeadResult{}, apperrors.NotFound("object %q not found", key)
		}
		return HeadResult{}, apperrors.Backend(err, "objectstore: HEAD %q", key)
	}

	contentType := "application/octet-stream"
	if out.ContentType != nil {
		contentType = *out.ContentType
	}

	return HeadResult{
		Size:         derefInt64(out.ContentLength),
		ETag:         derefString(stripETagQuotes(out.ETag)),
		LastModified: derefString(formatTime(out.LastModified)),
		ContentType:  contentType,
	}, nil
}

func (s *S3Store) ReadRange(ctx context.Context, key string, start, endInclusive int64) ([]byte, error) {
	if start < 0 || endInclusive < start {
		return nil, apperrors.InvalidSelection("objectstore: invalid range [%d,%d] for %q", start, endInclusive, key)
	}
	rangeHeader := fmt.Sprintf("bytes=%d-%d", start, endInclusive)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
		Range:  &rangeHeader,
	})
	if err != nil {
		if isInvalidRange(err) {
			return nil, apperrors.InvalidSelection("objectstore: range %s out of bounds for %q", rangeHeader, key)
		}
		if isNotFound(err) {
			return nil, apperrors.NotFound("object %q not found", key)
		}
		return nil, apperrors.Backend(err, "objectstore: GetObject range %s for %q", rangeHeader, key)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, apperrors.Backend(err, "objectstore: reading range body for %q", key)
	}

	want := endInclusive - start + 1
	if int64(len(data)) != want {
		return nil, apperrors.Backend(nil, "objectstore: short read for %q: wanted %d bytes, got %d", key, want, len(data))
	}
	return data, nil
}

func isNotFound(err error) bool {
	var nf *types.NoSuchKey
	if errors.As(err, &nf) {
		return true
	}
	code := asAPIErrorCode(err)
	return code == "NoSuchKey" || code == "NotFound"
}

func isInvalidRange(err error) bool {
	code := asAPIErrorCode(err)
	return code == "InvalidRange"
}

func asAPIErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func stripETagQuotes(etag *string) *string {
	if etag == nil {
		return nil
	}
	trimmed := strings.Trim(*etag, "\"")
	return &trimmed
}
