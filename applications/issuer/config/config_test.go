package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	want := Server{
		API: Api{
			HTTPAddr:  "0.0.0.0:8002",
			PublicURL: "http://localhost:8002",
		},
		Storage: Storage{
			Mode:       ModeInMemory,
			KeyPrefix:  "incoming/",
			Volumes:    7,
			VolumeSize: 100 * 1024 * 1024,
			GrantTTL:   15 * time.Minute,
		},
		S3: S3{
			Region:       "us-east-1",
			Bucket:       "sheetdrop",
			BaseEndpoint: "http://127.0.0.1:9000",
			UsePathStyle: true,
			Expires:      15 * time.Minute,
		},
	}

	got, err := Parse("config.yml")

	assert.NoError(t, got.Validate())
	assert.Equal(t, nil, err)
	assert.Equal(t, want, got)
}

func TestParseConfigEnvOverride(t *testing.T) {
	t.Setenv("ISSUER_HTTP_ADDR", "127.0.0.1:9999")
	t.Setenv("ISSUER_STORAGE_MODE", ModeS3)
	t.Setenv("ISSUER_UPLOAD_RATE", "1024")

	got, err := Parse("config.yml")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", got.API.HTTPAddr)
	assert.Equal(t, int64(1024), got.API.UploadRate)
	assert.Equal(t, ModeS3, got.Storage.Mode)
	assert.NoError(t, got.Validate())
}

func TestValidate(t *testing.T) {
	base, err := Parse("config.yml")
	require.NoError(t, err)

	for name, mutate := range map[string]func(s *Server){
		"no addr":       func(s *Server) { s.API.HTTPAddr = "" },
		"no public url": func(s *Server) { s.API.PublicURL = "" },
		"no volumes":    func(s *Server) { s.Storage.Volumes = 0 },
		"bad mode":      func(s *Server) { s.Storage.Mode = "disk" },
		"s3 no bucket": func(s *Server) {
			s.Storage.Mode = ModeS3
			s.S3.Bucket = ""
		},
	} {
		t.Run(name, func(t *testing.T) {
			s := base
			mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse("missing.yml")
	assert.Error(t, err)
}
