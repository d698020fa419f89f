// Package storage wraps the S3 object store: uploads of raw image bytes and
// resolution of stored s3:// references into time-limited signed URLs.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectAPI is the subset of the S3 client used for uploads.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// PresignAPI is the subset of the S3 presign client used for signed URLs.
type PresignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Client is the object store handle used by the rest of the application.
type Client struct {
	bucket  string
	objects ObjectAPI
	presign PresignAPI
	ttl     time.Duration
}

// New creates a storage client on top of a configured S3 client.
func New(s3Client *s3.Client, bucket string, presignTTL time.Duration) *Client {
	return &Client{
		bucket:  bucket,
		objects: s3Client,
		presign: s3.NewPresignClient(s3Client),
		ttl:     presignTTL,
	}
}

// NewWithAPI creates a storage client from explicit API handles. Used by
// tests to substitute fakes.
func NewWithAPI(objects ObjectAPI, presign PresignAPI, bucket string, presignTTL time.Duration) *Client {
	return &Client{
		bucket:  bucket,
		objects: objects,
		presign: presign,
		ttl:     presignTTL,
	}
}

// Bucket returns the bucket the client writes to.
func (c *Client) Bucket() string {
	return c.bucket
}

// Put stores body under key and returns the s3:// reference to persist.
func (c *Client) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := c.objects.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("putting object %s: %w", key, err)
	}
	return FormatURI(c.bucket, key), nil
}

// Delete removes the object behind an s3:// reference. References that are
// not storage URIs are ignored.
func (c *Client) Delete(ctx context.Context, uri string) error {
	bucket, key, ok := ParseURI(uri)
	if !ok {
		return nil
	}
	_, err := c.objects.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting object %s: %w", key, err)
	}
	return nil
}

// ResolveURL maps a stored s3:// reference to a signed GET URL. Anything
// that is not a recognized storage URI is returned unchanged. No caching is
// done, so links near expiry can be issued; callers treat this as best
// effort.
func (c *Client) ResolveURL(ctx context.Context, uri string) (string, error) {
	bucket, key, ok := ParseURI(uri)
	if !ok {
		return uri, nil
	}
	req, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(c.ttl))
	if err != nil {
		return "", fmt.Errorf("presigning %s: %w", uri, err)
	}
	return req.URL, nil
}
