// Package s3 presigns PUT requests against an S3 compatible bucket.
package s3

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/donmikel/sheetdrop/applications/issuer/config"
	"github.com/donmikel/sheetdrop/applications/issuer/domain"
	"github.com/donmikel/sheetdrop/applications/issuer/interfaces"
)

const defaultExpires = 15 * time.Minute

type presigner struct {
	client  *s3.PresignClient
	bucket  string
	expires time.Duration
}

func NewPresigner(ctx context.Context, conf config.S3) (interfaces.Presigner, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(conf.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			conf.AccessKey,
			conf.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("can't load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(conf.BaseEndpoint)
		}
		o.UsePathStyle = conf.UsePathStyle
	})

	expires := conf.Expires
	if expires <= 0 {
		expires = defaultExpires
	}

	return &presigner{
		client:  s3.NewPresignClient(client),
		bucket:  conf.Bucket,
		expires: expires,
	}, nil
}

func (p *presigner) PresignPut(ctx context.Context, key, contentType string) (domain.Grant, error) {
	in := &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	req, err := p.client.PresignPutObject(ctx, in, s3.WithPresignExpires(p.expires))
	if err != nil {
		return domain.Grant{}, fmt.Errorf("can't presign put: %w", err)
	}

	return domain.Grant{
		URL:       req.URL,
		Key:       key,
		ExpiresAt: time.Now().Add(p.expires),
	}, nil
}

func (p *presigner) Direct() bool {
	return true
}
