package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"palmr-api/pkg/filename"
	"palmr-api/pkg/palmrclient"
	"palmr-api/pkg/transfer"
	"palmr-api/pkg/uploader"
	"palmr-api/pkg/urlcache"
	"palmr-api/pkg/zipdownload"
)

type cli struct {
	opts   options
	stdout io.Writer
	logger *zap.Logger
	client *palmrclient.Client
	urls   *urlcache.Cache
	http   *http.Client
}

func newCLI(opts options, stdout io.Writer, logger *zap.Logger) *cli {
	client := palmrclient.New(opts.cfg.ServerURL, palmrclient.WithLogger(logger))
	return &cli{
		opts:   opts,
		stdout: stdout,
		logger: logger,
		client: client,
		urls:   urlcache.New(client, urlcache.WithLogger(logger)),
		http:   &http.Client{},
	}
}

func (c *cli) authenticate(ctx context.Context) error {
	if c.opts.cfg.Token != "" {
		c.client.SetToken(c.opts.cfg.Token)
		return nil
	}
	if c.opts.cfg.Login == "" || c.opts.cfg.Password == "" {
		return errors.New("set PALMR_TOKEN or PALMR_LOGIN and PALMR_PASSWORD")
	}

	u, err := c.client.Login(ctx, c.opts.cfg.Login, c.opts.cfg.Password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	c.logger.Debug("logged in", zap.String("user", u.Username))

	return nil
}

func (c *cli) login(ctx context.Context, _ []string) error {
	_, err := fmt.Fprintln(c.stdout, c.client.Token())
	return err
}

func (c *cli) newBar(max int64, description string) *progressbar.ProgressBar {
	if c.opts.quiet {
		return progressbar.DefaultSilent(max, description)
	}
	return progressbar.NewOptions64(
		max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func (c *cli) upload(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("upload: no files given")
	}

	files := make([]transfer.File, 0, len(args))
	for _, p := range args {
		f, err := transfer.FromPath(p)
		if err != nil {
			return err
		}
		files = append(files, f)
	}

	var folderID *string
	if c.opts.folderID != "" {
		folderID = &c.opts.folderID
	}

	bar := c.newBar(int64(len(files))*100, "uploading")
	var mu sync.Mutex
	seen := make(map[string]int, len(files))
	advance := func(id string, pct int) {
		mu.Lock()
		delta := pct - seen[id]
		if delta > 0 {
			seen[id] = pct
			_ = bar.Add(delta)
		}
		mu.Unlock()
	}

	o := uploader.New(
		c.client.UploadPolicy(c.opts.cfg.MaxFileSize, folderID),
		c.client,
		transfer.New(transfer.WithLogger(c.logger)),
		uploader.WithConcurrency(c.opts.cfg.Concurrency),
		uploader.WithLogger(c.logger),
		uploader.OnProgress(advance),
		uploader.OnTaskChange(func(t uploader.Task) {
			if t.Status == uploader.StatusError {
				advance(t.ID, 100)
			}
		}),
	)
	o.AddFiles(files...)
	s := o.StartUpload(ctx)
	_ = bar.Finish()
	_, _ = fmt.Fprintln(os.Stderr)

	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	for _, t := range s.Tasks {
		switch t.Status {
		case uploader.StatusSuccess:
			_, _ = fmt.Fprintf(tw, "ok\t%s\t%s\n", t.File.Name(), t.ObjectName)
		default:
			_, _ = fmt.Fprintf(tw, "failed\t%s\t%s\n", t.File.Name(), t.Err)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if s.Failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", s.Failed, s.Failed+s.Succeeded)
	}
	return nil
}

func (c *cli) list(ctx context.Context, args []string) error {
	page := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("ls: invalid page %q", args[0])
		}
		page = n
	}

	files, err := c.client.ListFiles(ctx, page)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tSIZE\tOBJECT")
	for _, f := range files {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", f.ID, f.Name, f.Size, f.ObjectName)
	}
	return tw.Flush()
}

// target splits "objectName=localName"; the local name defaults to the last
// key segment.
func target(arg string) (objectName, name string) {
	objectName, name, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		name = path.Base(objectName)
	}
	return objectName, filename.Base(name)
}

func (c *cli) download(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("download: no objects given")
	}
	dir := c.opts.out
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for _, arg := range args {
		objectName, name := target(arg)
		u, err := c.urls.GetURL(ctx, objectName, "")
		if err != nil {
			return fmt.Errorf("download %s: %w", objectName, err)
		}
		dst := filepath.Join(dir, name)
		if err = c.fetchTo(ctx, u, dst); err != nil {
			c.urls.Invalidate(objectName, "")
			return fmt.Errorf("download %s: %w", objectName, err)
		}
		_, _ = fmt.Fprintln(c.stdout, dst)
	}

	return nil
}

func (c *cli) fetchTo(ctx context.Context, url, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	bar := c.newBar(resp.ContentLength, filepath.Base(dst))
	if _, err = io.Copy(io.MultiWriter(f, bar), resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return err
	}
	_ = bar.Finish()

	return f.Close()
}

func (c *cli) zip(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("zip: no objects given")
	}
	if c.opts.out == "" {
		return errors.New("zip: -o archive path is required")
	}

	items := make([]zipdownload.Item, 0, len(args))
	for _, arg := range args {
		objectName, name := target(arg)
		u, err := c.urls.GetURL(ctx, objectName, "")
		if err != nil {
			return fmt.Errorf("zip %s: %w", objectName, err)
		}
		items = append(items, zipdownload.Item{URL: u, Name: name})
	}

	packager := zipdownload.New(zipdownload.WithHTTPClient(c.http), zipdownload.WithLogger(c.logger))
	if err := packager.SaveArchive(ctx, items, c.opts.out); err != nil {
		return err
	}
	_, err := fmt.Fprintln(c.stdout, c.opts.out)
	return err
}

func (c *cli) invite(ctx context.Context, _ []string) error {
	inv, err := c.client.CreateInvite(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.stdout, "%s\texpires %s\n", inv.Token, inv.ExpiresAt.Format(time.RFC3339))
	return err
}
