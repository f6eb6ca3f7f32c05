package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"ecofinds-api/internal/domain"
	uploadrepo "ecofinds-api/internal/repository/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	meta    map[string]uploadrepo.Object
	saveErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}, meta: map[string]uploadrepo.Object{}}
}

func (m *memoryStore) Save(_ context.Context, obj uploadrepo.Object, body io.Reader) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[obj.Name] = data
	m.meta[obj.Name] = obj
	return nil
}

func (m *memoryStore) Open(_ context.Context, name string) (io.ReadCloser, *uploadrepo.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[name]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	obj := m.meta[name]
	return io.NopCloser(bytes.NewReader(data)), &obj, nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func file(name string, body []byte) File {
	return File{OriginalName: name, Size: int64(len(body)), Body: bytes.NewReader(body)}
}

func TestSaveOneStoresUnderGeneratedName(t *testing.T) {
	store := newMemoryStore()
	svc := New(store, 0, "/uploads", nil)
	svc.now = func() time.Time { return time.UnixMilli(1700000000123) }

	f := file("Photo.PNG", pngHeader)
	stored, err := svc.SaveOne(context.Background(), &f)

	require.NoError(t, err)
	assert.Regexp(t, `^1700000000123-[0-9a-f-]{36}\.png$`, stored.Name)
	assert.Equal(t, "/uploads/"+stored.Name, stored.Path)
	assert.Equal(t, "Photo.PNG", stored.OriginalName)
	assert.Equal(t, int64(len(pngHeader)), stored.Size)
	assert.Equal(t, pngHeader, store.objects[stored.Name], "content must survive type sniffing")
	assert.Equal(t, "image/png", store.meta[stored.Name].ContentType)
}

func TestSaveOneValidation(t *testing.T) {
	svc := New(newMemoryStore(), 4, "/uploads", nil)

	_, err := svc.SaveOne(context.Background(), nil)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	f := file("big.jpg", []byte("12345"))
	_, err = svc.SaveOne(context.Background(), &f)
	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, MsgFileTooLarge, de.Message)
}

func TestSaveMany(t *testing.T) {
	store := newMemoryStore()
	svc := New(store, 0, "/uploads/", nil)
	ctx := context.Background()

	_, err := svc.SaveMany(ctx, nil)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	var six []File
	for i := 0; i < MaxFiles+1; i++ {
		six = append(six, file("a.jpg", []byte("x")))
	}
	_, err = svc.SaveMany(ctx, six)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Empty(t, store.objects)

	stored, err := svc.SaveMany(ctx, []File{file("a.jpg", []byte("a")), file("b", []byte("b"))})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.True(t, strings.HasSuffix(stored[0].Name, ".jpg"))
	assert.NotContains(t, stored[1].Name, ".")
	assert.True(t, strings.HasPrefix(stored[0].Path, "/uploads/"))
	assert.NotContains(t, stored[0].Path, "//")
}

func TestOpen(t *testing.T) {
	store := newMemoryStore()
	svc := New(store, 0, "/uploads", nil)
	ctx := context.Background()

	f := file("a.txt", []byte("hi"))
	stored, err := svc.SaveOne(ctx, &f)
	require.NoError(t, err)

	rc, _, err := svc.Open(ctx, stored.Name)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "hi", string(data))

	_, _, err = svc.Open(ctx, "missing.jpg")
	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.KindNotFound, de.Kind)
	assert.Equal(t, MsgFileNotFound, de.Message)
}

func TestSaveStoreFailureIsInternal(t *testing.T) {
	store := newMemoryStore()
	store.saveErr = errors.New("disk full")
	svc := New(store, 0, "/uploads", nil)

	f := file("a.jpg", []byte("x"))
	_, err := svc.SaveOne(context.Background(), &f)

	require.Error(t, err)
	assert.Equal(t, domain.Kind(0), domain.KindOf(err))
}
