package s3

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donmikel/sheetdrop/applications/issuer/config"
)

func TestPresignPut(t *testing.T) {
	p, err := NewPresigner(context.Background(), config.S3{
		Region:       "us-east-1",
		Bucket:       "uploads",
		BaseEndpoint: "http://127.0.0.1:9000",
		AccessKey:    "minio",
		SecretKey:    "minio123",
		UsePathStyle: true,
		Expires:      5 * time.Minute,
	})
	require.NoError(t, err)
	assert.True(t, p.Direct())

	grant, err := p.PresignPut(context.Background(), "incoming/bonus_buy_report.xlsx", "text/csv")
	require.NoError(t, err)

	u, err := url.Parse(grant.URL)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", u.Host)
	assert.Equal(t, "/uploads/incoming/bonus_buy_report.xlsx", u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "incoming/bonus_buy_report.xlsx", grant.Key)
}
