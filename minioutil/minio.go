package minioutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/magu1436/csvdatabase/atomicfile"
	"github.com/magu1436/csvdatabase/u"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	Access   string
	Secret   string
	Bucket   string
	Endpoint string
	Region   string
	// use http instead of https e.g. for a local minio server
	Insecure     bool
	RequestTrace io.Writer
}

// Client stores table files in a bucket of s3-compatible storage
type Client struct {
	Client *minio.Client
	config *Config
	Bucket string
}

func validateConfig(c *Config) error {
	if c == nil {
		return errors.New("must provide config")
	}
	if c.Access == "" || c.Secret == "" || c.Bucket == "" || c.Endpoint == "" {
		return errors.New("must provide all fields in config")
	}
	return nil
}

// New creates a client and checks that the bucket exists
func New(ctx context.Context, config *Config) (*Client, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	c := config
	mc, err := minio.New(c.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.Access, c.Secret, ""),
		Region: c.Region,
		Secure: !c.Insecure,
	})
	if err != nil {
		return nil, err
	}
	if c.RequestTrace != nil {
		mc.TraceOn(c.RequestTrace)
	}
	found, err := mc.BucketExists(ctx, c.Bucket)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("bucket '%s' doesn't exist", c.Bucket)
	}

	return &Client{
		Client: mc,
		config: config,
		Bucket: c.Bucket,
	}, nil
}

// contentTypeFor returns mime type based on file extension.
// Compressed files are binary no matter what's inside
func contentTypeFor(remotePath string) string {
	switch u.CompressionFromPath(remotePath) {
	case u.CompressionGzip:
		return "application/gzip"
	case u.CompressionZstd:
		return "application/zstd"
	case u.CompressionBrotli:
		return "application/x-brotli"
	case u.CompressionXz:
		return "application/x-xz"
	}
	ext := strings.ToLower(filepath.Ext(remotePath))
	switch ext {
	case ".csv":
		return "text/csv; charset=utf-8"
	case ".tsv":
		return "text/tab-separated-values; charset=utf-8"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func (c *Client) Exists(ctx context.Context, remotePath string) bool {
	_, err := c.Client.StatObject(ctx, c.Bucket, remotePath, minio.StatObjectOptions{})
	return err == nil
}

// UploadFile uploads local file at path as remotePath
func (c *Client) UploadFile(ctx context.Context, remotePath string, path string) error {
	opts := minio.PutObjectOptions{
		ContentType: contentTypeFor(remotePath),
	}
	_, err := c.Client.FPutObject(ctx, c.Bucket, remotePath, path, opts)
	return err
}

// DownloadFileAtomically downloads remotePath to dstPath. If download
// fails, dstPath is not modified
func (c *Client) DownloadFileAtomically(ctx context.Context, dstPath string, remotePath string) error {
	opts := minio.GetObjectOptions{}
	obj, err := c.Client.GetObject(ctx, c.Bucket, remotePath, opts)
	if err != nil {
		return err
	}
	defer u.CloseNoError(obj)

	// ensure there's a dir for destination file
	dir := filepath.Dir(dstPath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	return atomicfile.WriteFile(dstPath, func(w io.Writer) error {
		_, err := io.Copy(w, obj)
		return err
	})
}
