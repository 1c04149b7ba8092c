package archive

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/INotWant/QA/matchlstm"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/unixpickle/essentials"
)

const s3Scheme = "s3://"

// SaveFile saves params to a local path or to an
// "s3://bucket/key" location.
func SaveFile(ctx context.Context, path string, params *matchlstm.Params) error {
	var buf bytes.Buffer
	if err := Save(&buf, params); err != nil {
		return err
	}
	if strings.HasPrefix(path, s3Scheme) {
		bucket, key, err := splitS3(path)
		if err != nil {
			return err
		}
		svc, err := s3Client()
		if err != nil {
			return essentials.AddCtx("save archive", err)
		}
		_, err = svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
			Body:   bytes.NewReader(buf.Bytes()),
		})
		if err != nil {
			return essentials.AddCtx("save archive", err)
		}
		return nil
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return essentials.AddCtx("save archive", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return essentials.AddCtx("save archive", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return essentials.AddCtx("save archive", err)
	}
	return nil
}

// LoadFile is like Load, but reads from a local path or
// an "s3://bucket/key" location.
func LoadFile(ctx context.Context, path string, params *matchlstm.Params) error {
	if strings.HasPrefix(path, s3Scheme) {
		bucket, key, err := splitS3(path)
		if err != nil {
			return err
		}
		svc, err := s3Client()
		if err != nil {
			return essentials.AddCtx("load archive", err)
		}
		out, err := svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return essentials.AddCtx("load archive", err)
		}
		defer out.Body.Close()
		return Load(out.Body, params)
	}

	f, err := os.Open(path)
	if err != nil {
		return essentials.AddCtx("load archive", err)
	}
	defer f.Close()
	return Load(f, params)
}

// CheckpointName returns the archive name used after a
// training pass.
func CheckpointName(pass int) string {
	return fmt.Sprintf("params_pass_%05d.gz", pass)
}

func splitS3(path string) (bucket, key string, err error) {
	parts := strings.SplitN(strings.TrimPrefix(path, s3Scheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid s3 location: %s", path)
	}
	return parts[0], parts[1], nil
}

// s3Client uses the default AWS credential chain and
// region configuration.
func s3Client() (*s3.S3, error) {
	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, err
	}
	return s3.New(sess), nil
}
