package assets

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if params.Body != nil {
		_, _ = io.Copy(io.Discard, params.Body)
	}
	return &s3.PutObjectOutput{}, args.Error(0)
}

func (m *mockS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	return &s3.DeleteObjectOutput{}, args.Error(0)
}

func TestS3Storage_Put(t *testing.T) {
	client := new(mockS3)
	storage := &S3Storage{client: client, bucket: "cars"}

	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "cars" &&
			aws.ToString(in.Key) == "a.png" &&
			aws.ToString(in.ContentType) == "image/png" &&
			aws.ToInt64(in.ContentLength) == 3
	})).Return(nil)

	err := storage.Put(context.Background(), "a.png", "image/png", strings.NewReader("abc"), 3)
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestS3Storage_PutError(t *testing.T) {
	client := new(mockS3)
	storage := &S3Storage{client: client, bucket: "cars"}
	client.On("PutObject", mock.Anything, mock.Anything).Return(errors.New("access denied"))

	err := storage.Put(context.Background(), "a.png", "image/png", strings.NewReader("abc"), 3)
	assert.ErrorContains(t, err, "access denied")
}

func TestS3Storage_Delete(t *testing.T) {
	client := new(mockS3)
	storage := &S3Storage{client: client, bucket: "cars"}
	client.On("DeleteObject", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return aws.ToString(in.Bucket) == "cars" && aws.ToString(in.Key) == "a.png"
	})).Return(nil)

	require.NoError(t, storage.Delete(context.Background(), "a.png"))
	client.AssertExpectations(t)
}

func TestNewS3Storage(t *testing.T) {
	storage, err := NewS3Storage(context.Background(), S3Settings{
		Bucket:    "cars",
		Region:    "us-east-1",
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "admin",
		SecretKey: "secretpassword",
	})
	require.NoError(t, err)
	assert.Equal(t, "cars", storage.bucket)
	assert.IsType(t, &s3.Client{}, storage.client)
}
