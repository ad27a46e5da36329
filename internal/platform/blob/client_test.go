package blob

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 implements the api subset used by the client.
type fakeS3 struct {
	headErr    error
	getErr     error
	objectBody string

	headCalls int
	getCalls  int
}

func (f *fakeS3) HeadBucket(_ context.Context, _ *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	f.headCalls++
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, _ *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(f.objectBody)),
	}, nil
}

func TestCheckBucketAccess(t *testing.T) {
	t.Run("accessible", func(t *testing.T) {
		client := newClientWithAPI(&fakeS3{}, "firefoundry-dev")
		assert.NoError(t, client.CheckBucketAccess(context.Background(), "firefoundry-templates"))
	})

	t.Run("missing bucket", func(t *testing.T) {
		client := newClientWithAPI(&fakeS3{headErr: &types.NotFound{}}, "firefoundry-dev")
		err := client.CheckBucketAccess(context.Background(), "firefoundry-templates")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found under profile firefoundry-dev")
	})

	t.Run("access denied", func(t *testing.T) {
		client := newClientWithAPI(&fakeS3{headErr: errors.New("AccessDenied")}, "firefoundry-dev")
		err := client.CheckBucketAccess(context.Background(), "firefoundry-templates")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to access bucket")
	})
}

func TestDownload(t *testing.T) {
	t.Run("writes object to destination", func(t *testing.T) {
		fake := &fakeS3{objectBody: `{"name": "starter-bot"}`}
		client := newClientWithAPI(fake, "firefoundry-dev")

		dest := filepath.Join(t.TempDir(), "templates", "starter-bot.json")
		err := client.Download(context.Background(), "firefoundry-templates", "bot-templates/starter-bot.json", dest)
		require.NoError(t, err)

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name": "starter-bot"}`, string(data))
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		fake := &fakeS3{objectBody: `{"version": 2}`}
		client := newClientWithAPI(fake, "firefoundry-dev")

		dest := filepath.Join(t.TempDir(), "starter-bot.json")
		require.NoError(t, os.WriteFile(dest, []byte(`{"version": 1}`), 0o644))

		err := client.Download(context.Background(), "firefoundry-templates", "bot-templates/starter-bot.json", dest)
		require.NoError(t, err)

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.JSONEq(t, `{"version": 2}`, string(data))
	})

	t.Run("download failure leaves no file", func(t *testing.T) {
		fake := &fakeS3{getErr: errors.New("NoSuchKey")}
		client := newClientWithAPI(fake, "firefoundry-dev")

		dest := filepath.Join(t.TempDir(), "starter-bot.json")
		err := client.Download(context.Background(), "firefoundry-templates", "bot-templates/starter-bot.json", dest)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to download")

		_, statErr := os.Stat(dest)
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestNewClient_ProfileSwitch(t *testing.T) {
	// NewClient hits the real shared-config loader, pointed at a temp
	// credentials file holding only the firefoundry-dev profile.
	t.Run("matching profile needs no switch", func(t *testing.T) {
		writeAWSConfig(t, t.TempDir())
		t.Setenv("AWS_PROFILE", "firefoundry-dev")

		client, err := NewClient(context.Background(), "firefoundry-dev")
		require.NoError(t, err)
		assert.Equal(t, "firefoundry-dev", client.profile)
	})

	t.Run("differing profile switches once", func(t *testing.T) {
		writeAWSConfig(t, t.TempDir())
		t.Setenv("AWS_PROFILE", "personal")

		client, err := NewClient(context.Background(), "firefoundry-dev")
		require.NoError(t, err)
		assert.Equal(t, "firefoundry-dev", client.profile)
	})

	t.Run("unresolvable profile is fatal", func(t *testing.T) {
		t.Setenv("AWS_PROFILE", "personal")
		t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "missing"))
		t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "missing"))
		t.Setenv("AWS_ACCESS_KEY_ID", "")
		t.Setenv("AWS_SECRET_ACCESS_KEY", "")
		t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

		_, err := NewClient(context.Background(), "firefoundry-dev")
		require.Error(t, err)
	})
}

// writeAWSConfig points the SDK at a temp shared config containing the
// firefoundry-dev profile with static test credentials.
func writeAWSConfig(t *testing.T, dir string) {
	t.Helper()

	credentials := filepath.Join(dir, "credentials")
	content := "[firefoundry-dev]\naws_access_key_id = AKIATEST\naws_secret_access_key = testsecret\nregion = us-east-1\n"
	require.NoError(t, os.WriteFile(credentials, []byte(content), 0o600))

	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", credentials)
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
}
