package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// ErrStorage is wrapped by errors reported by a remote storage service.
var ErrStorage = errors.New("storage error")

// HTTPStorage uploads files as multipart/form-data to a file-storage
// service. Each file is sent in a "files" part; the service answers with a
// JSON array holding one {data, error} entry per file.
type HTTPStorage struct {
	Endpoint string
	Token    string
	Client   *http.Client
}

// NewHTTPStorage returns an HTTPStorage with a client limited to timeout.
func NewHTTPStorage(endpoint, token string, timeout time.Duration) *HTTPStorage {
	return &HTTPStorage{
		Endpoint: endpoint,
		Token:    token,
		Client:   &http.Client{Timeout: timeout},
	}
}

type fileError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type fileResponse struct {
	Data  *UploadedFile `json:"data"`
	Error *fileError    `json:"error"`
}

func (s *HTTPStorage) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

// UploadFiles posts files in one request.
func (s *HTTPStorage) UploadFiles(ctx context.Context, files ...File) ([]Result, error) {
	body, contentType, err := buildUploadForm(files)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := s.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return nil, fmt.Errorf("%w: status %d: %s", ErrStorage, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var decoded []fileResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}

	results := make([]Result, len(decoded))
	for i, d := range decoded {
		if d.Error != nil {
			results[i].Err = fmt.Errorf("%w: %s: %s", ErrStorage, d.Error.Code, d.Error.Message)
			continue
		}
		results[i].Data = d.Data
	}
	return results, nil
}

func buildUploadForm(files []File) (*bytes.Buffer, string, error) {
	if len(files) == 0 {
		return nil, "", errors.New("no files to upload")
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, f.Name))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create file part: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
