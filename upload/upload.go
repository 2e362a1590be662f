// Package upload renders card images and hands them to a blob store.
//
// Upload failures never surface as errors: the Uploader logs them and
// reports ("", false) so callers can fall back to a placeholder image.
package upload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eringen/ogcard/og"
)

// ContentType of every uploaded card.
const ContentType = "image/png"

// File is a named blob handed to a Storage.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadedFile describes a stored blob. Storages fill UfsURL, URL or both.
type UploadedFile struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	UfsURL string `json:"ufsUrl"`
	Size   int64  `json:"size"`
}

// PublicURL prefers UfsURL over URL.
func (f *UploadedFile) PublicURL() string {
	if f.UfsURL != "" {
		return f.UfsURL
	}
	return f.URL
}

// Result is the outcome for one uploaded file. Err is set when the storage
// rejected that file even though the request as a whole succeeded.
type Result struct {
	Data *UploadedFile
	Err  error
}

// Storage persists files and reports one Result per file, in order.
type Storage interface {
	UploadFiles(ctx context.Context, files ...File) ([]Result, error)
}

// Deleter is implemented by storages that can remove blobs by key.
type Deleter interface {
	DeleteFiles(ctx context.Context, keys ...string) error
}

var (
	errNoResult = errors.New("storage returned no result")
	errNoURL    = errors.New("storage result has no url")
)

// Receipt describes a successful upload.
type Receipt struct {
	URL      string
	Key      string
	Filename string
	Size     int64
}

// Uploader renders a card and uploads the PNG.
type Uploader struct {
	rasterizer og.Rasterizer
	storage    Storage
	logger     *zap.Logger
	now        func() time.Time
	observe    func(ok bool)
}

// Option configures an Uploader.
type Option func(*Uploader)

// WithLogger sets the logger failures are reported to.
func WithLogger(l *zap.Logger) Option {
	return func(u *Uploader) { u.logger = l }
}

// WithClock overrides time.Now, which supplies the filename id when the
// caller passes none.
func WithClock(now func() time.Time) Option {
	return func(u *Uploader) { u.now = now }
}

// WithObserver registers fn to be called once per upload with its outcome.
func WithObserver(fn func(ok bool)) Option {
	return func(u *Uploader) { u.observe = fn }
}

// New returns an Uploader that renders with r and stores into s.
func New(r og.Rasterizer, s Storage, opts ...Option) *Uploader {
	u := &Uploader{
		rasterizer: r,
		storage:    s,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// GenerateAndUpload renders req, uploads it as og-{id}-{slug}.png and
// returns the public URL. Any failure is logged and reported as ("", false).
func (u *Uploader) GenerateAndUpload(ctx context.Context, req og.Request, cfg *og.StyleConfig, id string) (string, bool) {
	rec, ok := u.Upload(ctx, req, cfg, id)
	return rec.URL, ok
}

// Upload is GenerateAndUpload with the full receipt.
func (u *Uploader) Upload(ctx context.Context, req og.Request, cfg *og.StyleConfig, id string) (rec Receipt, ok bool) {
	name := Filename(id, req.Title, u.now())
	log := u.logger.With(zap.String("filename", name))

	defer func() {
		if r := recover(); r != nil {
			log.Error("og upload panicked", zap.Any("panic", r))
			rec, ok = Receipt{}, false
		}
		if u.observe != nil {
			u.observe(ok)
		}
	}()

	rec, err := u.upload(ctx, req, cfg, name)
	if err != nil {
		log.Error("og upload failed", zap.Error(err))
		return Receipt{}, false
	}
	log.Info("og image uploaded", zap.String("url", rec.URL), zap.Int64("size", rec.Size))
	return rec, true
}

func (u *Uploader) upload(ctx context.Context, req og.Request, cfg *og.StyleConfig, name string) (Receipt, error) {
	png, err := og.Generate(ctx, u.rasterizer, req, cfg)
	if err != nil {
		return Receipt{}, err
	}
	results, err := u.storage.UploadFiles(ctx, File{Name: name, ContentType: ContentType, Data: png})
	if err != nil {
		return Receipt{}, fmt.Errorf("upload %s: %w", name, err)
	}
	if len(results) == 0 {
		return Receipt{}, errNoResult
	}
	res := results[0]
	if res.Err != nil {
		return Receipt{}, fmt.Errorf("upload %s: %w", name, res.Err)
	}
	if res.Data == nil {
		return Receipt{}, errNoResult
	}
	url := res.Data.PublicURL()
	if url == "" {
		return Receipt{}, errNoURL
	}
	size := res.Data.Size
	if size == 0 {
		size = int64(len(png))
	}
	return Receipt{URL: url, Key: res.Data.Key, Filename: name, Size: size}, nil
}
