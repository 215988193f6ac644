package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

const defaultRegion = "us-east-1"

// Config describes the bucket uploads are written to.
//
// Endpoint and UsePathStyle target S3-compatible servers such as MinIO.
// Static credentials are used only when both keys are set; otherwise the
// default AWS credential chain applies. PresignDuration is in seconds and
// defaults to one hour. SSEAlgorithm is "AES256" or "aws:kms".
type Config struct {
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	UsePathStyle    bool
	PresignDuration int

	EnableSSE    bool
	SSEAlgorithm string
	SSEKMSKeyID  string

	CreateBucketIfNotExist bool
}

// Backend stores upload blobs in an S3 bucket
type Backend struct {
	api       *s3.Client
	presigner *s3.PresignClient
	uploader  *manager.Uploader

	bucket string
	prefix string
	region string
	ttl    time.Duration

	sse      types.ServerSideEncryption
	sseKeyID string
}

// New connects to the bucket described by config. With
// CreateBucketIfNotExist the bucket is created when missing.
func New(ctx context.Context, config Config) (*Backend, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	region := config.Region
	if region == "" {
		region = defaultRegion
	}
	ttl := time.Hour
	if config.PresignDuration > 0 {
		ttl = time.Duration(config.PresignDuration) * time.Second
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		}
	})

	b := &Backend{
		api:       api,
		presigner: s3.NewPresignClient(api),
		uploader:  manager.NewUploader(api),
		bucket:    config.Bucket,
		prefix:    strings.Trim(config.Prefix, "/"),
		region:    region,
		ttl:       ttl,
	}
	if config.EnableSSE {
		switch config.SSEAlgorithm {
		case "AES256":
			b.sse = types.ServerSideEncryptionAes256
		case "aws:kms":
			b.sse = types.ServerSideEncryptionAwsKms
			b.sseKeyID = config.SSEKMSKeyID
		default:
			return nil, fmt.Errorf("unsupported sse algorithm %q", config.SSEAlgorithm)
		}
	}

	if config.CreateBucketIfNotExist {
		if err := b.ensureBucket(ctx); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Backend) key(objectKey string) string {
	if b.prefix == "" {
		return objectKey
	}
	return path.Join(b.prefix, objectKey)
}

// isNotFound reports whether err is a missing bucket or key. MinIO and some
// gateways answer HEAD with a bare 404 code instead of a typed error.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}
	switch apiErrorCode(err) {
	case "NoSuchKey", "NotFound", "NoSuchBucket", "404":
		return true
	}
	return false
}

func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func (b *Backend) ensureBucket(ctx context.Context) error {
	_, err := b.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)})
	switch {
	case err == nil:
		return nil
	case !isNotFound(err) && apiErrorCode(err) != "BadRequest":
		return fmt.Errorf("check bucket %s: %w", b.bucket, err)
	}

	in := &s3.CreateBucketInput{Bucket: aws.String(b.bucket)}
	if b.region != defaultRegion {
		in.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(b.region),
		}
	}
	if _, err := b.api.CreateBucket(ctx, in); err != nil {
		switch apiErrorCode(err) {
		case "BucketAlreadyExists", "BucketAlreadyOwnedByYou":
			return nil
		}
		return fmt.Errorf("create bucket %s: %w", b.bucket, err)
	}
	return nil
}

func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*simplecms.ObjectMeta, error) {
	head, err := b.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(objectKey)),
	})
	if isNotFound(err) {
		return nil, simplecms.ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("head %s: %w", objectKey, err)
	}

	contentType := aws.ToString(head.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	meta := &simplecms.ObjectMeta{
		Key:         objectKey,
		Size:        aws.ToInt64(head.ContentLength),
		ContentType: contentType,
		UpdatedAt:   aws.ToTime(head.LastModified),
		Metadata:    map[string]string{"content_type": contentType},
	}
	for k, v := range head.Metadata {
		meta.Metadata[k] = v
	}
	if etag := strings.Trim(aws.ToString(head.ETag), `"`); etag != "" {
		meta.Metadata["etag"] = etag
	}
	return meta, nil
}

// Upload streams reader to the bucket. Large bodies go through multipart upload.
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params simplecms.UploadParams) error {
	in := &s3.PutObjectInput{
		Bucket:               aws.String(b.bucket),
		Key:                  aws.String(b.key(params.ObjectKey)),
		Body:                 reader,
		ServerSideEncryption: b.sse,
	}
	if params.MimeType != "" {
		in.ContentType = aws.String(params.MimeType)
	}
	if b.sseKeyID != "" {
		in.SSEKMSKeyId = aws.String(b.sseKeyID)
	}
	if _, err := b.uploader.Upload(ctx, in); err != nil {
		return fmt.Errorf("put %s: %w", params.ObjectKey, err)
	}
	return nil
}

// GetDownloadURL presigns a GET for objectKey. A non-empty downloadFilename
// makes the response an attachment with that name.
func (b *Backend) GetDownloadURL(ctx context.Context, objectKey string, downloadFilename string) (string, error) {
	in := &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(objectKey)),
	}
	if downloadFilename != "" {
		in.ResponseContentDisposition = aws.String(fmt.Sprintf("attachment; filename=%q", downloadFilename))
	}
	req, err := b.presigner.PresignGetObject(ctx, in, s3.WithPresignExpires(b.ttl))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", objectKey, err)
	}
	return req.URL, nil
}

func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	out, err := b.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(objectKey)),
	})
	if isNotFound(err) {
		return nil, simplecms.ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", objectKey, err)
	}
	return out.Body, nil
}

// Delete removes objectKey. S3 does not report missing keys on delete.
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	_, err := b.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(objectKey)),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", objectKey, err)
	}
	return nil
}

var _ simplecms.BlobStore = (*Backend)(nil)
