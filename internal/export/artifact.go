// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/fault"
)

// ArtifactStore keeps rendered exports in object storage so downloads
// survive process restarts.
type ArtifactStore struct {
	client      *minio.Client
	bucket      string
	compression string
}

// ArtifactStoreConfig configures the object storage connection.
type ArtifactStoreConfig struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool

	// Compression is "gzip", "brotli" or "none".
	Compression string
}

// NewArtifactStore connects to object storage and ensures the bucket exists.
func NewArtifactStore(ctx context.Context, cfg ArtifactStoreConfig) (*ArtifactStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		log.Infof("created artifact bucket %s", cfg.Bucket)
	}

	compression := cfg.Compression
	switch compression {
	case "", "none":
		compression = "none"
	case "gzip", "brotli":
	default:
		return nil, fmt.Errorf("unknown artifact compression %q", cfg.Compression)
	}

	return &ArtifactStore{client: client, bucket: cfg.Bucket, compression: compression}, nil
}

// Put uploads an artifact, compressed per configuration. The stored object
// name carries the compression suffix.
func (s *ArtifactStore) Put(ctx context.Context, artifact Artifact) (string, error) {
	data, name, encoding, err := s.encode(artifact)
	if err != nil {
		return "", err
	}

	opts := minio.PutObjectOptions{ContentType: artifact.ContentType}
	if encoding != "" {
		opts.ContentEncoding = encoding
	}
	_, err = s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return "", fault.Wrap(fault.KindStoreWrite, err, "failed to upload artifact %s", name)
	}
	return name, nil
}

// Get downloads a stored artifact, transparently decompressing it.
func (s *ArtifactStore) Get(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch artifact %s: %w", name, err)
	}
	defer obj.Close()

	var reader io.Reader = obj
	switch {
	case strings.HasSuffix(name, ".gz"):
		gr, err := gzip.NewReader(obj)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip artifact %s: %w", name, err)
		}
		defer gr.Close()
		reader = gr
	case strings.HasSuffix(name, ".br"):
		reader = brotli.NewReader(obj)
	}
	return io.ReadAll(reader)
}

func (s *ArtifactStore) encode(artifact Artifact) (data []byte, name, encoding string, err error) {
	switch s.compression {
	case "gzip":
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(artifact.Data); err != nil {
			return nil, "", "", err
		}
		if err := gw.Close(); err != nil {
			return nil, "", "", err
		}
		return buf.Bytes(), artifact.Name + ".gz", "gzip", nil
	case "brotli":
		var buf bytes.Buffer
		bw := brotli.NewWriter(&buf)
		if _, err := bw.Write(artifact.Data); err != nil {
			return nil, "", "", err
		}
		if err := bw.Close(); err != nil {
			return nil, "", "", err
		}
		return buf.Bytes(), artifact.Name + ".br", "br", nil
	default:
		return artifact.Data, artifact.Name, "", nil
	}
}
