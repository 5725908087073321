package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = input
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.body = string(data)
	return &manager.UploadOutput{}, nil
}

type fakeLister struct {
	pages  []*s3.ListObjectsV2Output
	inputs []s3.ListObjectsV2Input
}

func (f *fakeLister) ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.inputs = append(f.inputs, *input)
	if len(f.pages) == 0 {
		return nil, errors.New("no more pages")
	}
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func TestS3ServiceUpload(t *testing.T) {
	up := &fakeUploader{}
	svc := &S3Service{uploader: up}

	location, err := svc.Upload(context.Background(), strings.NewReader(`[]`), UploadOptions{
		Bucket:      "exports",
		Key:         "/usermgr-exports/users-1.json",
		ContentType: "application/json",
	})
	require.NoError(t, err)
	assert.Equal(t, "s3://exports/usermgr-exports/users-1.json", location)
	assert.Equal(t, "usermgr-exports/users-1.json", aws.ToString(up.input.Key))
	assert.Equal(t, "application/json", aws.ToString(up.input.ContentType))
	assert.Equal(t, types.ObjectCannedACLPrivate, up.input.ACL)
	assert.Equal(t, `[]`, up.body)
}

func TestS3ServiceUploadErrors(t *testing.T) {
	svc := &S3Service{uploader: &fakeUploader{err: errors.New("denied")}}

	_, err := svc.Upload(context.Background(), strings.NewReader(""), UploadOptions{Key: "k"})
	assert.ErrorContains(t, err, "bucket is required")

	_, err = svc.Upload(context.Background(), strings.NewReader(""), UploadOptions{Bucket: "b"})
	assert.ErrorContains(t, err, "object key is required")

	_, err = svc.Upload(context.Background(), strings.NewReader(""), UploadOptions{Bucket: "b", Key: "k"})
	assert.ErrorContains(t, err, "denied")
}

func TestS3ServiceListObjectsFollowsContinuation(t *testing.T) {
	ls := &fakeLister{pages: []*s3.ListObjectsV2Output{
		{
			Contents:              []types.Object{{Key: aws.String("p/a.json"), Size: aws.Int64(10)}},
			IsTruncated:           aws.Bool(true),
			NextContinuationToken: aws.String("next"),
		},
		{
			Contents: []types.Object{{Key: aws.String("p/b.json"), Size: aws.Int64(20)}},
		},
	}}
	svc := &S3Service{client: ls}

	objects, err := svc.ListObjects(context.Background(), "exports", "p/")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "p/a.json", objects[0].Key)
	assert.Equal(t, int64(20), objects[1].Size)

	require.Len(t, ls.inputs, 2)
	assert.Equal(t, "p/", aws.ToString(ls.inputs[0].Prefix))
	assert.Equal(t, "next", aws.ToString(ls.inputs[1].ContinuationToken))
}
