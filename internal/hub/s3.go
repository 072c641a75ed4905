package hub

import (
	"context"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Client pulls artifacts from an S3-compatible blob store. The repo id
// maps to bucket plus optional key prefix.
type S3Client struct {
	cli *minio.Client
}

// NewS3 builds an S3Client against endpoint with static credentials.
func NewS3(endpoint, accessKey, secretKey string, useSSL bool) (*S3Client, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &S3Client{cli: cli}, nil
}

// Fetch implements Client.
func (c *S3Client) Fetch(ctx context.Context, repoID, remotePath string) ([]byte, error) {
	bucket, prefix := splitRepo(repoID)
	key := path.Join(prefix, remotePath)
	obj, err := c.cli.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapS3Err(err, repoID, remotePath)
	}
	defer obj.Close()
	// GetObject is lazy; errors (including NoSuchKey) surface on read.
	b, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapS3Err(err, repoID, remotePath)
	}
	return b, nil
}

func mapS3Err(err error, repoID, remotePath string) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return ErrNotFound(repoID, remotePath)
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return ErrUnauthorized(repoID)
	}
	return ErrUnavailable("s3 fetch "+repoID+"/"+remotePath, err)
}
