package diagnostics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"water-route-service/internal/domain"
)

type fakePutter struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func exhaustedTrail() *domain.AllStrategiesExhaustedError {
	return &domain.AllStrategiesExhaustedError{
		RequestID: "req-42",
		Probe:     domain.ProbeReport{Endpoint: "/health", Reason: "connection refused"},
		Attempts: []domain.Attempt{
			{Method: domain.MethodGenetic, Outcome: domain.OutcomeSoftFailure, Reason: "network error", Duration: 5 * time.Millisecond},
			{Method: domain.MethodStandard, Outcome: domain.OutcomeSoftFailure},
			{Method: domain.MethodNearestLookup, Outcome: domain.OutcomeTimeout},
			{Method: domain.MethodLocalFallback, Outcome: domain.OutcomeNoData},
		},
	}
}

func TestTrailKey(t *testing.T) {
	at := time.Date(2026, 2, 3, 23, 30, 0, 0, time.FixedZone("X", -3*3600))
	assert.Equal(t, "trails/2026/02/04/req-1.json", TrailKey(at, "req-1"))
}

func TestS3ArchiveWritesTrail(t *testing.T) {
	putter := &fakePutter{}
	archive := &S3Archive{
		client: putter,
		bucket: "support-trails",
		now:    func() time.Time { return time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC) },
	}

	require.NoError(t, archive.Archive(context.Background(), exhaustedTrail()))
	require.Len(t, putter.inputs, 1)

	in := putter.inputs[0]
	assert.Equal(t, "support-trails", *in.Bucket)
	assert.Equal(t, "trails/2026/05/06/req-42.json", *in.Key)
	assert.Equal(t, "application/json", *in.ContentType)

	var doc archivedTrail
	require.NoError(t, json.Unmarshal(putter.bodies[0], &doc))
	assert.Equal(t, "req-42", doc.RequestID)
	require.Len(t, doc.Attempts, 4)
	assert.Equal(t, domain.MethodLocalFallback, doc.Attempts[3].Method)
	assert.Equal(t, domain.OutcomeNoData, doc.Attempts[3].Outcome)
	assert.EqualValues(t, 5, doc.Attempts[0].DurationMs)
	assert.Equal(t, "connection refused", doc.Probe.Reason)
}

func TestS3ArchivePutError(t *testing.T) {
	archive := &S3Archive{client: &fakePutter{err: errors.New("access denied")}, bucket: "b", now: time.Now}

	err := archive.Archive(context.Background(), exhaustedTrail())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestNewS3ArchiveRequiresBucket(t *testing.T) {
	_, err := NewS3Archive(context.Background(), S3Config{})
	require.Error(t, err)
}

type recordingTransport struct {
	mu       sync.Mutex
	requests []*http.Request
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.mu.Lock()
	rt.requests = append(rt.requests, req)
	rt.mu.Unlock()
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader(nil)),
		Header:     http.Header{"ETag": {"\"etag\""}},
		Request:    req,
	}, nil
}

func TestS3ArchivePathStyleEndpoint(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIA")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "SECRET")

	rt := &recordingTransport{}
	archive, err := NewS3Archive(context.Background(), S3Config{
		Bucket:     "trails-bucket",
		Endpoint:   "https://minio.local",
		PathStyle:  true,
		HTTPClient: &http.Client{Transport: rt},
	})
	require.NoError(t, err)

	require.NoError(t, archive.Archive(context.Background(), exhaustedTrail()))
	require.NotEmpty(t, rt.requests)

	req := rt.requests[len(rt.requests)-1]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "minio.local", req.URL.Host)
	assert.Regexp(t, `^/trails-bucket/trails/\d{4}/\d{2}/\d{2}/req-42\.json$`, req.URL.Path)
}
