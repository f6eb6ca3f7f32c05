package upload

import (
	"context"
	"errors"
	"fmt"
	"io"

	"ecofinds-api/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client used by the blob store.
type S3API interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type s3Repo struct {
	client   S3API
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewS3 stores blobs in bucket under prefix.
func NewS3(client S3API, bucket, prefix string) Repository {
	return &s3Repo{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
	}
}

func (r *s3Repo) Save(ctx context.Context, obj Object, body io.Reader) error {
	if !ValidName(obj.Name) {
		return fmt.Errorf("invalid object name %q", obj.Name)
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.prefix + obj.Name),
		Body:   body,
	}
	if obj.ContentType != "" {
		input.ContentType = aws.String(obj.ContentType)
	}
	if _, err := r.uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("s3 upload %s: %w", obj.Name, err)
	}
	return nil
}

func (r *s3Repo) Open(ctx context.Context, name string) (io.ReadCloser, *Object, error) {
	if !ValidName(name) {
		return nil, nil, domain.ErrNotFound
	}
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.prefix + name),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("s3 get %s: %w", name, err)
	}

	obj := &Object{Name: name, Size: -1, ContentType: "application/octet-stream"}
	if out.ContentLength != nil {
		obj.Size = *out.ContentLength
	}
	if out.ContentType != nil {
		obj.ContentType = *out.ContentType
	}
	return out.Body, obj, nil
}
