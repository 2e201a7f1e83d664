package share

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir_Share(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	loc, err := Dir{Path: dir}.Share(context.Background(), "Toni_March.xlsx", []byte("xlsx"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Toni_March.xlsx"), loc)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "xlsx", string(data))

	_, err = os.Stat(loc + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestDir_RejectsEscapingNames(t *testing.T) {
	d := Dir{Path: t.TempDir()}
	for _, name := range []string{"", "..", "../x.xlsx", "a/b.xlsx", `a\b.xlsx`} {
		_, err := d.Share(context.Background(), name, []byte("x"))
		assert.Error(t, err, "name %q", name)
	}
}

func stubS3(t *testing.T) (*s3.PutObjectInput, *s3.Options) {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	origPut := putObject
	origPresign := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
		putObject = origPut
		presignGetObject = origPresign
	})

	put := &s3.PutObjectInput{}
	opts := &s3.Options{}

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-central-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "minioadmin", creds.AccessKeyID)
		return aws.Config{Region: lo.Region}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(opts)
		}
		return s3.New(s3.Options{Region: cfg.Region})
	}
	putObject = func(_ *s3.Client, _ context.Context, in *s3.PutObjectInput) error {
		*put = *in
		return nil
	}
	presignGetObject = func(_ *s3.Client, _ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		assert.Equal(t, 2*time.Hour, po.Expires)
		return &v4.PresignedHTTPRequest{URL: "http://127.0.0.1:9000/" + *in.Bucket + "/" + *in.Key + "?X-Amz-Signature=x"}, nil
	}
	return put, opts
}

func testS3() S3 {
	return S3{
		Bucket:    "worktime",
		Prefix:    "exports",
		Region:    "eu-central-1",
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		LinkTTL:   2 * time.Hour,
	}
}

func TestS3_Share(t *testing.T) {
	put, opts := stubS3(t)

	loc, err := testS3().Share(context.Background(), "Toni_March.xlsx", []byte("xlsx"))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/worktime/exports/Toni_March.xlsx?X-Amz-Signature=x", loc)

	assert.Equal(t, "worktime", aws.ToString(put.Bucket))
	assert.Equal(t, "exports/Toni_March.xlsx", aws.ToString(put.Key))
	assert.Equal(t, xlsxContentType, aws.ToString(put.ContentType))
	body, err := io.ReadAll(put.Body)
	require.NoError(t, err)
	assert.Equal(t, "xlsx", string(body))

	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
}

func TestS3_UploadError(t *testing.T) {
	stubS3(t)
	putObject = func(*s3.Client, context.Context, *s3.PutObjectInput) error {
		return errors.New("access denied")
	}

	_, err := testS3().Share(context.Background(), "Toni_March.xlsx", []byte("xlsx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestS3_DefaultLinkTTL(t *testing.T) {
	stubS3(t)
	var expires time.Duration
	presignGetObject = func(_ *s3.Client, _ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		expires = po.Expires
		return &v4.PresignedHTTPRequest{URL: "http://127.0.0.1:9000/" + *in.Key}, nil
	}

	target := testS3()
	target.LinkTTL = 0
	_, err := target.Share(context.Background(), "Toni_March.xlsx", []byte("xlsx"))
	require.NoError(t, err)
	assert.Equal(t, DefaultLinkTTL, expires)
}

func TestS3_RequiresBucket(t *testing.T) {
	_, err := S3{}.Share(context.Background(), "a.xlsx", nil)
	assert.Error(t, err)
}

func TestS3_Key(t *testing.T) {
	assert.Equal(t, "a.xlsx", S3{}.Key("a.xlsx"))
	assert.Equal(t, "p/q/a.xlsx", S3{Prefix: "p/q/"}.Key("a.xlsx"))
}
