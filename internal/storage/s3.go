// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage saves presentations to S3-compatible object storage
// under content-addressed keys. It wraps the AWS SDK v2 and is configured
// for path-style access (required by CEPH/Hetzner/MinIO).
package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"deckpress/internal/models"
)

const keyPrefix = "documents/"

// ErrNotFound is returned by Load when no document has the given hash.
var ErrNotFound = errors.New("storage: document not found")

// ErrInvalidHash is returned for a hash that is not 64 lowercase hex digits.
var ErrInvalidHash = errors.New("storage: invalid document hash")

var hashPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// ObjectAPI is the subset of the S3 client the store uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Client stores documents as "documents/{sha256}.json" objects in one
// bucket. Identical documents share one object.
type Client struct {
	api       ObjectAPI
	presigner *s3.PresignClient
	bucket    string
}

// New creates an S3 storage client with path-style addressing. Returns
// (nil, nil) if endpoint or credentials are empty, allowing the app to
// start without remote storage.
func New(endpoint, region, accessKey, secretKey, bucket string) (*Client, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket must be set when S3_ENDPOINT is configured")
	}

	endpoint = strings.TrimRight(endpoint, "/")
	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &Client{
		api:       s3Client,
		presigner: s3.NewPresignClient(s3Client),
		bucket:    bucket,
	}, nil
}

// NewWithAPI builds a client on an existing object API, e.g. a test fake.
func NewWithAPI(api ObjectAPI, bucket string) *Client {
	return &Client{api: api, bucket: bucket}
}

// Hash returns the content address of doc: the hex SHA-256 of its
// canonical JSON encoding.
func Hash(doc models.Document) (string, []byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", nil, fmt.Errorf("encode document: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), data, nil
}

// Save uploads doc and returns its hash.
func (c *Client) Save(ctx context.Context, doc models.Document) (string, error) {
	hash, data, err := Hash(doc)
	if err != nil {
		return "", err
	}
	key := objectKey(hash)
	_, err = c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload %s/%s: %w", c.bucket, key, err)
	}
	return hash, nil
}

// Load downloads the document stored under hash.
func (c *Client) Load(ctx context.Context, hash string) (models.Document, error) {
	if !hashPattern.MatchString(hash) {
		return models.Document{}, ErrInvalidHash
	}
	key := objectKey(hash)
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return models.Document{}, ErrNotFound
		}
		return models.Document{}, fmt.Errorf("s3 download %s/%s: %w", c.bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return models.Document{}, fmt.Errorf("s3 read body %s/%s: %w", c.bucket, key, err)
	}
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.Document{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return doc, nil
}

// PresignedURL returns a temporary GET URL for the raw JSON of a saved
// document (S3 caps expiry at 7 days).
func (c *Client) PresignedURL(ctx context.Context, hash string, expires time.Duration) (string, error) {
	if c.presigner == nil {
		return "", errors.New("storage: presigning not available")
	}
	if !hashPattern.MatchString(hash) {
		return "", ErrInvalidHash
	}
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(objectKey(hash)),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("s3 presign %s: %w", hash, err)
	}
	return req.URL, nil
}

// Bucket returns the bucket name.
func (c *Client) Bucket() string { return c.bucket }

func objectKey(hash string) string { return keyPrefix + hash + ".json" }
