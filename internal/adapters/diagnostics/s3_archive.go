package diagnostics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"water-route-service/internal/domain"
	"water-route-service/internal/platform/obs"
)

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds construction parameters for S3Archive. Credentials come
// from the default AWS chain.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional, e.g. MinIO
	PathStyle bool

	HTTPClient *http.Client // optional
}

// S3Archive stores the attempt trail of every exhausted resolution as a JSON
// object under trails/<yyyy>/<mm>/<dd>/<request_id>.json.
type S3Archive struct {
	client objectPutter
	bucket string
	now    func() time.Time
}

func NewS3Archive(ctx context.Context, cfg S3Config) (*S3Archive, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 archive: bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("s3 archive: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.HTTPClient != nil {
			o.HTTPClient = cfg.HTTPClient
		}
	})
	return &S3Archive{client: client, bucket: cfg.Bucket, now: time.Now}, nil
}

type archivedAttempt struct {
	Method     domain.Method  `json:"method"`
	Outcome    domain.Outcome `json:"outcome"`
	Reason     string         `json:"reason,omitempty"`
	DurationMs int64          `json:"duration_ms"`
}

type archivedTrail struct {
	RequestID  string             `json:"request_id"`
	ArchivedAt time.Time          `json:"archived_at"`
	Probe      domain.ProbeReport `json:"probe"`
	Attempts   []archivedAttempt  `json:"attempts"`
	Message    string             `json:"message"`
}

func (a *S3Archive) Archive(ctx context.Context, trail *domain.AllStrategiesExhaustedError) (err error) {
	defer obs.Time(ctx, "s3.Archive")(&err)

	if trail == nil {
		return nil
	}

	now := a.now().UTC()
	doc := archivedTrail{
		RequestID:  trail.RequestID,
		ArchivedAt: now,
		Probe:      trail.Probe,
		Attempts:   make([]archivedAttempt, 0, len(trail.Attempts)),
		Message:    trail.Error(),
	}
	for _, at := range trail.Attempts {
		doc.Attempts = append(doc.Attempts, archivedAttempt{
			Method:     at.Method,
			Outcome:    at.Outcome,
			Reason:     at.Reason,
			DurationMs: at.Duration.Milliseconds(),
		})
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("s3 archive: marshal trail: %w", err)
	}

	key := TrailKey(now, trail.RequestID)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3 archive: put %s: %w", key, err)
	}
	return nil
}

// TrailKey is the object key of a request's trail archived at t.
func TrailKey(t time.Time, requestID string) string {
	t = t.UTC()
	return fmt.Sprintf("trails/%04d/%02d/%02d/%s.json", t.Year(), int(t.Month()), t.Day(), requestID)
}
