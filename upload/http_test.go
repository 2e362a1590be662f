package upload

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStorageUpload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		assert.Equal(t, "multipart/form-data", mediaType)

		reader := multipart.NewReader(r.Body, params["boundary"])
		part, err := reader.NextPart()
		require.NoError(t, err)
		data, _ := io.ReadAll(part)
		assert.Equal(t, "files", part.FormName())
		assert.Equal(t, "og-1-x.png", part.FileName())
		assert.Equal(t, "image/png", part.Header.Get("Content-Type"))
		assert.Equal(t, "png-bytes", string(data))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"data":{"key":"k1","name":"og-1-x.png","url":"https://files/k1","ufsUrl":"https://ufs/k1","size":9},"error":null}]`))
	}))
	defer server.Close()

	s := NewHTTPStorage(server.URL, "secret", 5*time.Second)
	results, err := s.UploadFiles(context.Background(), File{Name: "og-1-x.png", ContentType: ContentType, Data: []byte("png-bytes")})

	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, &UploadedFile{Key: "k1", Name: "og-1-x.png", URL: "https://files/k1", UfsURL: "https://ufs/k1", Size: 9}, results[0].Data)
}

func TestHTTPStoragePerFileError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"data":null,"error":{"code":"TOO_LARGE","message":"file too large"}}]`))
	}))
	defer server.Close()

	s := &HTTPStorage{Endpoint: server.URL}
	results, err := s.UploadFiles(context.Background(), File{Name: "a.png", Data: []byte("x")})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Nil(t, results[0].Data)
	assert.True(t, errors.Is(results[0].Err, ErrStorage))
	assert.Contains(t, results[0].Err.Error(), "file too large")
}

func TestHTTPStorageStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	s := &HTTPStorage{Endpoint: server.URL}
	_, err := s.UploadFiles(context.Background(), File{Name: "a.png", Data: []byte("x")})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStorage))
	assert.Contains(t, err.Error(), "401")
}

func TestHTTPStorageNoFiles(t *testing.T) {
	s := &HTTPStorage{Endpoint: "http://127.0.0.1:1"}
	_, err := s.UploadFiles(context.Background())
	assert.Error(t, err)
}

func TestUploaderOverHTTPNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	u, logs := newTestUploader(&fakeRasterizer{}, &HTTPStorage{Endpoint: endpoint})
	url, ok := u.GenerateAndUpload(context.Background(), titleRequest("My Post!"), nil, "abc123")

	assert.False(t, ok)
	assert.Empty(t, url)
	assert.Equal(t, 1, logs.FilterMessage("og upload failed").Len())
}
