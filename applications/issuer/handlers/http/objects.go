package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"
	"github.com/juju/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/donmikel/sheetdrop/applications/issuer"
	"github.com/donmikel/sheetdrop/applications/issuer/domain"
	"github.com/donmikel/sheetdrop/applications/issuer/metrics"
)

const maxRequestBody = 64 << 10

type RouterConfig struct {
	// UploadRate caps PUT bodies in bytes per second, 0 means unlimited.
	UploadRate int64
	Gatherer   prometheus.Gatherer
	Metrics    *metrics.Metrics
}

func NewRouter(svc issuer.UploadService, rc RouterConfig, logger log.Logger) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/get-upload-url", IssueURLHandler(svc, logger)).Methods(http.MethodPost)
	r.HandleFunc("/objects/{key:.+}", PutObjectHandler(svc, rc.UploadRate, rc.Metrics, logger)).Methods(http.MethodPut)
	r.HandleFunc("/objects/{key:.+}", GetObjectHandler(svc, logger)).Methods(http.MethodGet)
	r.HandleFunc("/trigger-sync", TriggerSyncHandler(svc, logger)).Methods(http.MethodPost)
	if rc.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(rc.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	return r
}

func IssueURLHandler(svc issuer.UploadService, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.UploadRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil {
			writeErr(w, fmt.Errorf("malformed request: %w", err), http.StatusBadRequest)
			return
		}

		grant, err := svc.IssueURL(r.Context(), req)
		if err != nil {
			level.Error(logger).Log("msg", "IssueURL error",
				"err", err,
			)
			writeErr(w, err, statusOf(err))
			return
		}

		writeJSON(w, grant, logger)
	}
}

func PutObjectHandler(svc issuer.UploadService, uploadRate int64, m *metrics.Metrics, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reject := func(err error, status int) {
			if m != nil {
				m.RejectedPuts.WithLabelValues(strconv.Itoa(status)).Inc()
			}
			writeErr(w, err, status)
		}

		if r.ContentLength == -1 {
			level.Error(logger).Log("msg", "wrong ContentLength")
			reject(domain.ErrLengthRequired, http.StatusLengthRequired)
			return
		}

		var body io.Reader = r.Body
		if uploadRate > 0 {
			body = ratelimit.Reader(r.Body, ratelimit.NewBucketWithRate(float64(uploadRate), uploadRate))
		}

		obj := domain.Object{
			Meta: domain.ObjectMeta{
				Key:           mux.Vars(r)["key"],
				ContentType:   r.Header.Get("Content-Type"),
				ContentLength: r.ContentLength,
			},
			Body: io.NopCloser(body),
		}

		err := svc.PutObject(r.Context(), r.URL.Query().Get("token"), obj)
		if err != nil {
			level.Error(logger).Log("msg", "PutObject error",
				"key", obj.Meta.Key,
				"err", err,
			)
			reject(err, statusOf(err))
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func GetObjectHandler(svc issuer.UploadService, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := mux.Vars(r)["key"]
		if key == "" {
			writeErr(w, errors.New("empty key"), http.StatusBadRequest)
			return
		}

		obj, err := svc.GetObject(r.Context(), key)
		if err != nil {
			writeErr(w, err, statusOf(err))
			return
		}
		defer obj.Body.Close()

		if obj.Meta.ContentType != "" {
			w.Header().Set("Content-Type", obj.Meta.ContentType)
		}
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Meta.ContentLength, 10))

		if _, err = io.Copy(w, obj.Body); err != nil {
			level.Error(logger).Log("msg", "error body copy", "err", err)
			return
		}
	}
}

func TriggerSyncHandler(svc issuer.UploadService, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := svc.TriggerSync(r.Context())
		if err != nil {
			level.Error(logger).Log("msg", "TriggerSync error",
				"err", err,
			)
			writeErr(w, err, statusOf(err))
			return
		}

		writeJSON(w, run, logger)
	}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrLengthRequired):
		return http.StatusLengthRequired
	case errors.Is(err, domain.ErrNoSpace):
		return http.StatusInsufficientStorage
	case errors.Is(err, domain.ErrDirectUpload):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, v interface{}, logger log.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		level.Error(logger).Log("msg", "can't write response", "err", err)
	}
}

func writeErr(w http.ResponseWriter, err error, status int) {
	w.WriteHeader(status)
	_, err = w.Write([]byte(err.Error()))
	if err != nil {
		fmt.Println("can't write response ", err)
	}
}
