// Package archive exports nightly snapshot history to object storage so the
// database only keeps the hot window.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disgoorg/snowflake/v2"

	"github.com/hazelvale/economica/internal/config"
	"github.com/hazelvale/economica/internal/database/models"
)

type Service struct {
	client *s3.Client
	bucket string
	root   string
}

func New(ctx context.Context, cfg config.ArchiveConfig) (*Service, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, "")),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load archive config: %w", err)
	}

	return &Service{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		root:   strings.TrimPrefix(cfg.Root, "/"),
	}, nil
}

// key lays archives out as root/<server>/<date>.json, one object per server
// per day.
func (s *Service) key(serverID snowflake.ID, day time.Time) string {
	return fmt.Sprintf("%s/%s/%s.json", s.root, serverID, day.Format("2006-01-02"))
}

// Export uploads one server's snapshots for the day. Re-running the export
// overwrites the same object, so the job is safe to repeat.
func (s *Service) Export(ctx context.Context, serverID snowflake.ID, day time.Time, snapshots []*models.MarketSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	payload, err := json.Marshal(snapshots)
	if err != nil {
		return fmt.Errorf("failed to encode snapshots: %w", err)
	}

	key := s.key(serverID, day)
	contentType := "application/json"
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(payload),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload archive %s: %w", key, err)
	}
	return nil
}
