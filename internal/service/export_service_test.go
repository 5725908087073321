package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"usermgr/internal/domain"
	"usermgr/internal/service"
	"usermgr/internal/storage"
)

type fakeStorage struct {
	opts    storage.UploadOptions
	body    []byte
	objects []storage.ObjectInfo
	prefix  string
}

func (f *fakeStorage) Upload(ctx context.Context, body io.Reader, opts storage.UploadOptions) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.opts = opts
	f.body = data
	return "s3://" + opts.Bucket + "/" + opts.Key, nil
}

func (f *fakeStorage) ListObjects(ctx context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	f.prefix = prefix
	return f.objects, nil
}

func usersWithRows(rows ...domain.User) service.UserService {
	f := newFixture()
	f.open()
	f.users.On("List", mock.Anything).Return(rows, nil)
	return service.NewUserService(f.sessions)
}

func TestExportService_ExportOmitsPasswords(t *testing.T) {
	users := usersWithRows(
		domain.User{ID: 1, Username: "bob", Email: "bob@mail.com", Password: "bobpass"},
		domain.User{ID: 2, Username: "alice", Email: "alice@mail.com", Password: "pw1"},
	)

	var buf bytes.Buffer
	count, err := service.NewExportService(users, nil, "", "").Export(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NotContains(t, buf.String(), "bobpass")

	var decoded []service.ExportedUser
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, []service.ExportedUser{
		{ID: 1, Username: "bob", Email: "bob@mail.com"},
		{ID: 2, Username: "alice", Email: "alice@mail.com"},
	}, decoded)
}

func TestExportService_ExportEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	count, err := service.NewExportService(usersWithRows(), nil, "", "").Export(context.Background(), &buf)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.JSONEq(t, `[]`, buf.String())
}

func TestExportService_Upload(t *testing.T) {
	store := &fakeStorage{}
	users := usersWithRows(domain.User{ID: 1, Username: "bob", Email: "bob@mail.com"})

	location, count, err := service.NewExportService(users, store, "exports", "/usermgr-exports/").Upload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "exports", store.opts.Bucket)
	assert.Equal(t, "application/json", store.opts.ContentType)
	assert.Regexp(t, regexp.MustCompile(`^usermgr-exports/users-[0-9a-f-]{36}\.json$`), store.opts.Key)
	assert.Equal(t, "s3://exports/"+store.opts.Key, location)
	assert.Contains(t, string(store.body), `"username": "bob"`)
}

func TestExportService_RequiresStorage(t *testing.T) {
	svc := service.NewExportService(usersWithRows(), nil, "exports", "p")

	_, _, err := svc.Upload(context.Background())
	assert.ErrorIs(t, err, service.ErrExportStorageNotConfigured)

	_, err = service.NewExportService(usersWithRows(), &fakeStorage{}, "", "p").ListExports(context.Background())
	assert.ErrorIs(t, err, service.ErrExportStorageNotConfigured)
}

func TestExportService_ListExports(t *testing.T) {
	store := &fakeStorage{objects: []storage.ObjectInfo{{Key: "p/users-1.json", Size: 42}}}

	objects, err := service.NewExportService(usersWithRows(), store, "exports", "p").ListExports(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "p/", store.prefix)
	assert.Len(t, objects, 1)
}
