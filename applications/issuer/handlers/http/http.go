package http

import (
	"net/http"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/donmikel/sheetdrop/applications/issuer"
	"github.com/donmikel/sheetdrop/applications/issuer/config"
	"github.com/donmikel/sheetdrop/applications/issuer/metrics"
)

func NewHTTPServer(conf config.Api, svc issuer.UploadService, gatherer prometheus.Gatherer, m *metrics.Metrics, logger log.Logger) *http.Server {
	mux := NewRouter(svc, RouterConfig{
		UploadRate: conf.UploadRate,
		Gatherer:   gatherer,
		Metrics:    m,
	}, logger)
	return &http.Server{
		Addr:    conf.HTTPAddr,
		Handler: mux,
	}
}
