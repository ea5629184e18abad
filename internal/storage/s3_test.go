package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3Client struct {
	mock.Mock
}

func (m *mockS3Client) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*s3.HeadBucketOutput), args.Error(1)
}

func (m *mockS3Client) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*s3.CreateBucketOutput), args.Error(1)
}

func (m *mockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *mockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func (m *mockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*s3.DeleteObjectOutput), args.Error(1)
}

const testBucket = "filedrop-test"

// newTestS3Storage returns a storage whose bucket already exists
func newTestS3Storage(t *testing.T) (*S3Storage, *mockS3Client) {
	t.Helper()

	client := new(mockS3Client)
	client.On("HeadBucket", mock.Anything, &s3.HeadBucketInput{Bucket: aws.String(testBucket)}).
		Return(&s3.HeadBucketOutput{}, nil).Once()

	storage, err := newS3Storage(context.Background(), client, testBucket)
	require.NoError(t, err)
	return storage, client
}

func TestS3ExistingBucketIsNotCreated(t *testing.T) {
	_, client := newTestS3Storage(t)

	client.AssertExpectations(t)
	client.AssertNotCalled(t, "CreateBucket", mock.Anything, mock.Anything)
}

func TestS3CreatesMissingBucket(t *testing.T) {
	client := new(mockS3Client)
	client.On("HeadBucket", mock.Anything, &s3.HeadBucketInput{Bucket: aws.String(testBucket)}).
		Return((*s3.HeadBucketOutput)(nil), &types.NotFound{}).Once()
	client.On("CreateBucket", mock.Anything, &s3.CreateBucketInput{Bucket: aws.String(testBucket)}).
		Return(&s3.CreateBucketOutput{}, nil).Once()

	_, err := newS3Storage(context.Background(), client, testBucket)
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestS3BucketCreationFails(t *testing.T) {
	client := new(mockS3Client)
	client.On("HeadBucket", mock.Anything, mock.Anything).
		Return((*s3.HeadBucketOutput)(nil), &types.NotFound{}).Once()
	client.On("CreateBucket", mock.Anything, mock.Anything).
		Return((*s3.CreateBucketOutput)(nil), errors.New("access denied")).Once()

	_, err := newS3Storage(context.Background(), client, testBucket)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestS3SaveUsesUploadsPrefix(t *testing.T) {
	storage, client := newTestS3Storage(t)

	var body string
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == testBucket && aws.ToString(in.Key) == "uploads/1700000000000-abc.txt"
	})).Run(func(args mock.Arguments) {
		in := args.Get(1).(*s3.PutObjectInput)
		b, _ := io.ReadAll(in.Body)
		body = string(b)
	}).Return(&s3.PutObjectOutput{}, nil).Once()

	key, err := storage.Save(context.Background(), "1700000000000-abc.txt", strings.NewReader("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "uploads/1700000000000-abc.txt", key)
	assert.Equal(t, "hello world", body)
	client.AssertExpectations(t)
}

func TestS3SaveRejectsPathNames(t *testing.T) {
	storage, client := newTestS3Storage(t)

	for _, name := range []string{"", "../escape.txt", "dir/file.txt", `dir\file.txt`} {
		_, err := storage.Save(context.Background(), name, strings.NewReader("x"))
		assert.Error(t, err, name)
	}
	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything)
}

func TestS3SaveFailure(t *testing.T) {
	storage, client := newTestS3Storage(t)
	client.On("PutObject", mock.Anything, mock.Anything).
		Return((*s3.PutObjectOutput)(nil), errors.New("connection reset")).Once()

	_, err := storage.Save(context.Background(), "1-a.txt", strings.NewReader("x"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBlobUnavailable)
}

func TestS3OpenStreamsObject(t *testing.T) {
	storage, client := newTestS3Storage(t)
	client.On("GetObject", mock.Anything, &s3.GetObjectInput{
		Bucket: aws.String(testBucket),
		Key:    aws.String("uploads/1-a.txt"),
	}).Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("content"))}, nil).Once()

	rc, err := storage.Open(context.Background(), "uploads/1-a.txt")
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "content", string(b))
}

func TestS3OpenMissingObject(t *testing.T) {
	storage, client := newTestS3Storage(t)
	client.On("GetObject", mock.Anything, mock.Anything).
		Return((*s3.GetObjectOutput)(nil), &types.NoSuchKey{Message: aws.String("The specified key does not exist.")}).Once()

	_, err := storage.Open(context.Background(), "uploads/gone.txt")
	require.ErrorIs(t, err, ErrBlobUnavailable)
	assert.Contains(t, err.Error(), "NoSuchKey")
}

func TestS3OpenTransportError(t *testing.T) {
	storage, client := newTestS3Storage(t)
	transportErr := errors.New("dial tcp: connection refused")
	client.On("GetObject", mock.Anything, mock.Anything).
		Return((*s3.GetObjectOutput)(nil), transportErr).Once()

	_, err := storage.Open(context.Background(), "uploads/1-a.txt")
	assert.ErrorIs(t, err, ErrBlobUnavailable)
	assert.ErrorIs(t, err, transportErr)
}

func TestS3Delete(t *testing.T) {
	storage, client := newTestS3Storage(t)
	client.On("DeleteObject", mock.Anything, &s3.DeleteObjectInput{
		Bucket: aws.String(testBucket),
		Key:    aws.String("uploads/1-a.txt"),
	}).Return(&s3.DeleteObjectOutput{}, nil).Once()

	require.NoError(t, storage.Delete(context.Background(), "uploads/1-a.txt"))
	client.AssertExpectations(t)
}
