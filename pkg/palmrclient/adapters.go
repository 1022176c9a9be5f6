package palmrclient

import (
	"context"
	"strings"

	"palmr-api/pkg/filename"
	"palmr-api/pkg/transfer"
	"palmr-api/pkg/uploader"
	"palmr-api/pkg/urlcache"
)

// FetchURL lets a Client back a urlcache.Cache.
func (c *Client) FetchURL(ctx context.Context, objectName, password string) (urlcache.Issued, error) {
	p, err := c.DownloadURL(ctx, objectName, password)
	if err != nil {
		return urlcache.Issued{}, err
	}

	issued := urlcache.Issued{URL: c.absolute(p.URL)}
	if !p.ExpiresAt.IsZero() {
		if d := p.ExpiresAt.Sub(c.now()); d > 0 {
			issued.Lifetime = d
		}
	}
	return issued, nil
}

// PresignUpload lets a Client back an uploader.Orchestrator.
func (c *Client) PresignUpload(ctx context.Context, objectName string, file transfer.File) (uploader.Presigned, error) {
	p, err := c.UploadURL(ctx, objectName, file.Name(), file.Size())
	if err != nil {
		return uploader.Presigned{}, err
	}
	return uploader.Presigned{URL: c.absolute(p.URL), ObjectName: p.ObjectName}, nil
}

// absolute resolves the relative token URLs handed out in filesystem mode.
func (c *Client) absolute(u string) string {
	if strings.HasPrefix(u, "/") {
		return c.baseURL + u
	}
	return u
}

// UploadPolicy rejects files over maxSize, lets the server pick object keys
// and registers uploaded files, optionally inside folderID.
func (c *Client) UploadPolicy(maxSize int64, folderID *string) uploader.Policy {
	return uploader.SizePolicy{
		MaxSize: maxSize,
		Next:    registerPolicy{client: c, folderID: folderID},
	}
}

type registerPolicy struct {
	client   *Client
	folderID *string
}

func (registerPolicy) Validate(transfer.File) error { return nil }

func (registerPolicy) ObjectName(transfer.File) (string, error) { return "", nil }

func (p registerPolicy) Register(ctx context.Context, file transfer.File, objectName string) error {
	_, err := p.client.RegisterFile(ctx, RegisterFileInput{
		Name:       filename.Base(file.Name()),
		ObjectName: objectName,
		Size:       file.Size(),
		Extension:  filename.Extension(file.Name()),
		FolderID:   p.folderID,
	})
	return err
}
