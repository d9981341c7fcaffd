package presigned

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-kit/log"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donmikel/sheetdrop/applications/uploader/domain"
)

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// fakeBucket plays both the issuance endpoint and the storage.
type fakeBucket struct {
	mu          sync.Mutex
	server      *httptest.Server
	issueStatus int
	issueBody   string
	putStatus   int
	issued      []domain.UploadURLRequest
	rawIssue    []string
	puts        []recordedPut
}

type recordedPut struct {
	path        string
	contentType string
	length      int64
	body        []byte
}

func newFakeBucket(t *testing.T) *fakeBucket {
	t.Helper()

	b := &fakeBucket{}
	r := mux.NewRouter()
	r.HandleFunc("/get-upload-url", b.issue).Methods(http.MethodPost)
	r.HandleFunc("/bucket/{key}", b.put).Methods(http.MethodPut)
	b.server = httptest.NewServer(r)
	t.Cleanup(b.server.Close)

	return b
}

func (b *fakeBucket) issue(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	defer b.mu.Unlock()

	var req domain.UploadURLRequest
	_ = json.Unmarshal(raw, &req)
	b.issued = append(b.issued, req)
	b.rawIssue = append(b.rawIssue, string(raw))

	if b.issueStatus != 0 {
		w.WriteHeader(b.issueStatus)
		_, _ = w.Write([]byte(b.issueBody))
		return
	}
	if b.issueBody != "" {
		_, _ = w.Write([]byte(b.issueBody))
		return
	}

	_ = json.NewEncoder(w).Encode(domain.UploadTarget{URL: b.server.URL + "/bucket/" + req.FileName})
}

func (b *fakeBucket) put(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.puts = append(b.puts, recordedPut{
		path:        r.URL.Path,
		contentType: r.Header.Get("Content-Type"),
		length:      r.ContentLength,
		body:        body,
	})
	if b.putStatus != 0 {
		w.WriteHeader(b.putStatus)
	}
}

func collect(samples <-chan domain.TransferSample) func() []domain.TransferSample {
	var (
		out  []domain.TransferSample
		done = make(chan struct{})
	)
	go func() {
		defer close(done)
		for s := range samples {
			out = append(out, s)
		}
	}()

	return func() []domain.TransferSample {
		<-done
		return out
	}
}

func TestUploadSuccess(t *testing.T) {
	b := newFakeBucket(t)
	client := New(b.server.URL+"/get-upload-url", log.NewNopLogger())
	data := []byte("Articles;Articles - App")
	file := domain.NewMemoryFile("bonus.xlsx", xlsxType, data)

	samples := make(chan domain.TransferSample)
	wait := collect(samples)

	err := client.Upload(context.Background(), file, "bonus_buy_report.xlsx", samples)
	require.NoError(t, err)

	got := wait()
	require.NotEmpty(t, got)
	assert.Equal(t, uint64(0), got[0].BytesTransferred)
	assert.Equal(t, uint64(len(data)), got[len(got)-1].BytesTransferred)
	for _, s := range got {
		assert.Equal(t, uint64(len(data)), s.BytesTotal)
	}

	require.Len(t, b.issued, 1)
	assert.Equal(t, domain.UploadURLRequest{FileName: "bonus_buy_report.xlsx", FileType: xlsxType}, b.issued[0])

	require.Len(t, b.puts, 1)
	assert.Equal(t, "/bucket/bonus_buy_report.xlsx", b.puts[0].path)
	assert.Equal(t, xlsxType, b.puts[0].contentType)
	assert.Equal(t, int64(len(data)), b.puts[0].length)
	assert.Equal(t, data, b.puts[0].body)
}

func TestUploadDefaultsToCSVAndOmitsFileType(t *testing.T) {
	b := newFakeBucket(t)
	client := New(b.server.URL+"/get-upload-url", log.NewNopLogger(), WithFileType(false))

	err := client.Upload(context.Background(), domain.NewMemoryFile("range.csv", "", []byte("a,b")), "blue_yonda_range.csv", nil)
	require.NoError(t, err)

	require.Len(t, b.rawIssue, 1)
	assert.JSONEq(t, `{"fileName":"blue_yonda_range.csv"}`, b.rawIssue[0])
	require.Len(t, b.puts, 1)
	assert.Equal(t, "text/csv", b.puts[0].contentType)
}

func TestUploadEmptyFile(t *testing.T) {
	b := newFakeBucket(t)
	client := New(b.server.URL+"/get-upload-url", log.NewNopLogger())

	err := client.Upload(context.Background(), domain.NewMemoryFile("empty.csv", "text/csv", nil), "empty.csv", nil)
	require.NoError(t, err)
	require.Len(t, b.puts, 1)
	assert.Empty(t, b.puts[0].body)
}

func TestUploadIssuanceFailure(t *testing.T) {
	b := newFakeBucket(t)
	b.issueStatus = http.StatusInternalServerError
	b.issueBody = "lambda exploded"
	client := New(b.server.URL+"/get-upload-url", log.NewNopLogger())

	samples := make(chan domain.TransferSample, 8)
	err := client.Upload(context.Background(), domain.NewMemoryFile("a.csv", "text/csv", []byte("x")), "a.csv", samples)

	require.ErrorIs(t, err, ErrRequestFailed)
	var rErr *RequestFailedError
	require.ErrorAs(t, err, &rErr)
	assert.Equal(t, http.StatusInternalServerError, rErr.Status)
	assert.Equal(t, "Failed to get upload URL: lambda exploded", err.Error())
	assert.Empty(t, b.puts)

	_, open := <-samples
	assert.False(t, open)
}

func TestUploadIssuanceFailureWithoutBody(t *testing.T) {
	b := newFakeBucket(t)
	b.issueStatus = http.StatusBadGateway
	client := New(b.server.URL+"/get-upload-url", log.NewNopLogger())

	err := client.Upload(context.Background(), domain.NewMemoryFile("a.csv", "text/csv", []byte("x")), "a.csv", nil)

	require.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, "Failed to get upload URL: Bad Gateway", err.Error())
}

func TestUploadMalformedIssuance(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "<html>"},
		{name: "no url", body: `{"link":"https://bucket/x"}`},
		{name: "empty url", body: `{"url":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBucket(t)
			b.issueBody = tt.body
			client := New(b.server.URL+"/get-upload-url", log.NewNopLogger())

			err := client.Upload(context.Background(), domain.NewMemoryFile("a.csv", "text/csv", []byte("x")), "a.csv", nil)

			assert.ErrorIs(t, err, ErrRequestFailed)
			assert.Empty(t, b.puts)
		})
	}
}

func TestUploadStorageRejects(t *testing.T) {
	b := newFakeBucket(t)
	b.putStatus = http.StatusForbidden
	client := New(b.server.URL+"/get-upload-url", log.NewNopLogger())

	err := client.Upload(context.Background(), domain.NewMemoryFile("a.csv", "text/csv", []byte("x")), "a.csv", nil)

	require.ErrorIs(t, err, ErrTransferFailed)
	var tErr *TransferFailedError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, http.StatusForbidden, tErr.Status)
	assert.Equal(t, "Failed to upload file to storage: 403 Forbidden", err.Error())
}

func TestUploadNetworkError(t *testing.T) {
	storage := httptest.NewServer(http.NotFoundHandler())
	deadURL := storage.URL + "/bucket/a.csv"
	storage.Close()

	issuer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(domain.UploadTarget{URL: deadURL})
	}))
	defer issuer.Close()

	client := New(issuer.URL, log.NewNopLogger())
	err := client.Upload(context.Background(), domain.NewMemoryFile("a.csv", "text/csv", []byte("x")), "a.csv", nil)

	assert.ErrorIs(t, err, ErrNetwork)
	assert.NotErrorIs(t, err, ErrTransferFailed)
}

func TestRetryRequestsFreshURL(t *testing.T) {
	b := newFakeBucket(t)
	b.putStatus = http.StatusForbidden
	client := New(b.server.URL+"/get-upload-url", log.NewNopLogger())
	file := domain.NewMemoryFile("a.csv", "text/csv", []byte("x"))

	require.Error(t, client.Upload(context.Background(), file, "a.csv", nil))

	b.mu.Lock()
	b.putStatus = 0
	b.mu.Unlock()

	require.NoError(t, client.Upload(context.Background(), file, "a.csv", nil))
	assert.Len(t, b.issued, 2)
	assert.Len(t, b.puts, 2)
}

func TestTriggerSync(t *testing.T) {
	var calls int
	status := http.StatusOK
	body := ""
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	client := New("unused", log.NewNopLogger())
	require.NoError(t, client.TriggerSync(context.Background(), srv.URL))

	status, body = http.StatusServiceUnavailable, "sync already running"
	err := client.TriggerSync(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, "Failed to trigger sync: sync already running", err.Error())
	assert.Equal(t, 2, calls)
}
