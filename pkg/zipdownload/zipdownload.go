// Package zipdownload fetches several presigned URLs and packs the results
// into one zip archive.
package zipdownload

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"palmr-api/pkg/filename"
)

var ErrNoItems = errors.New("zipdownload: nothing to package")

type Item struct {
	URL  string
	Name string
}

type FetchError struct {
	Name       string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.Name, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

type Option func(*Packager)

func WithHTTPClient(c *http.Client) Option { return func(p *Packager) { p.client = c } }

func WithLogger(logger *zap.Logger) Option {
	return func(p *Packager) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock sets the modification time stamped on entries.
func WithClock(now func() time.Time) Option { return func(p *Packager) { p.now = now } }

type Packager struct {
	client *http.Client
	logger *zap.Logger
	now    func() time.Time
}

func New(opts ...Option) *Packager {
	p := &Packager{
		client: http.DefaultClient,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Package downloads every item into memory and only then writes the archive
// to w. Any failed fetch fails the whole call and nothing is written.
func (p *Packager) Package(ctx context.Context, items []Item, w io.Writer) error {
	if len(items) == 0 {
		return ErrNoItems
	}

	bodies := make([][]byte, len(items))
	g, gctx := errgroup.WithContext(ctx)
	for i, it := range items {
		g.Go(func() error {
			b, err := p.fetch(gctx, it)
			if err != nil {
				return err
			}
			bodies[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.logger.Warn("zip download aborted", zap.Int("items", len(items)), zap.Error(err))
		return err
	}

	names := filename.NewDeduper()
	modified := p.now()
	zw := zip.NewWriter(w)
	for i, it := range items {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     names.Next(it.Name),
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return fmt.Errorf("zip entry %s: %w", it.Name, err)
		}
		if _, err = fw.Write(bodies[i]); err != nil {
			return fmt.Errorf("zip entry %s: %w", it.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("zip close: %w", err)
	}

	return nil
}

func (p *Packager) fetch(ctx context.Context, it Item) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, it.URL, nil)
	if err != nil {
		return nil, &FetchError{Name: it.Name, Err: err}
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &FetchError{Name: it.Name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Name: it.Name, StatusCode: resp.StatusCode}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Name: it.Name, Err: err}
	}
	return b, nil
}

// SaveArchive packages items into path. The file appears only once the
// archive is complete.
func (p *Packager) SaveArchive(ctx context.Context, items []Item, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".palmr-zip-*")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err = p.Package(ctx, items, tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp archive: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save archive: %w", err)
	}

	return nil
}
