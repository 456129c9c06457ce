package datasource

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used by the dataset loader.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// LoadS3 reads a JSON dataset object (an array of rows) from S3.
//
// Example:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	rows, err := datasource.LoadS3(ctx, s3.NewFromConfig(cfg), "datasets", "users.json")
//	src := datasource.NewMemory(rows)
func LoadS3(ctx context.Context, client S3API, bucket, key string) ([]Row, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3 object %s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	var rows []Row
	if err := json.NewDecoder(out.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode dataset %s/%s: %w", bucket, key, err)
	}
	return rows, nil
}

// NewMemoryFromS3 loads a dataset from S3 into a Memory source.
func NewMemoryFromS3(ctx context.Context, client S3API, bucket, key string, opts ...MemoryOption) (*Memory, error) {
	rows, err := LoadS3(ctx, client, bucket, key)
	if err != nil {
		return nil, err
	}
	return NewMemory(rows, opts...), nil
}
