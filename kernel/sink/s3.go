package sink

import (
	"bytes"
	"context"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/mamameal/docgenctl/kernel/config"
	"github.com/pkg/errors"
)

// S3Sink uploads artifacts to bucket/prefix/name.
type S3Sink struct {
	bucket   string
	prefix   string
	uploader s3manageriface.UploaderAPI
}

func NewS3Sink(cfg config.S3Config) (*S3Sink, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("s3 sink requires a bucket")
	}
	awsCfg := &aws.Config{}
	if cfg.Region != "" {
		awsCfg.Region = aws.String(cfg.Region)
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create aws session")
	}
	return NewS3SinkWithUploader(cfg.Bucket, cfg.Prefix, s3manager.NewUploader(sess)), nil
}

func NewS3SinkWithUploader(bucket, prefix string, uploader s3manageriface.UploaderAPI) *S3Sink {
	return &S3Sink{
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
		uploader: uploader,
	}
}

func (s *S3Sink) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := path.Join(s.prefix, safeName(name))
	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to upload s3://%s/%s", s.bucket, key)
	}
	if out != nil && out.Location != "" {
		return out.Location, nil
	}
	return "s3://" + s.bucket + "/" + key, nil
}

func (s *S3Sink) String() string {
	return "s3://" + path.Join(s.bucket, s.prefix)
}
