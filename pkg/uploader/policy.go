package uploader

import (
	"context"
	"fmt"

	"palmr-api/pkg/transfer"
)

// Policy decides what may be uploaded, where it goes, and records it once
// the bytes are stored.
type Policy interface {
	Validate(file transfer.File) error
	// ObjectName may return "" to let the URL issuer pick the key.
	ObjectName(file transfer.File) (string, error)
	Register(ctx context.Context, file transfer.File, objectName string) error
}

type Presigned struct {
	URL        string
	ObjectName string
}

type Presigner interface {
	PresignUpload(ctx context.Context, objectName string, file transfer.File) (Presigned, error)
}

type Transfer interface {
	PutFile(ctx context.Context, file transfer.File, url string, onProgress transfer.ProgressFunc) transfer.Result
}

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// SizePolicy rejects files larger than MaxSize and defers everything else to
// Next. Zero MaxSize disables the check; a nil Next keys nothing and
// registers nothing.
type SizePolicy struct {
	MaxSize int64
	Next    Policy
}

func (p SizePolicy) Validate(file transfer.File) error {
	if p.MaxSize > 0 && file.Size() > p.MaxSize {
		return &ValidationError{Reason: fmt.Sprintf("%s is too large: %d bytes exceeds the %d byte limit", file.Name(), file.Size(), p.MaxSize)}
	}
	if p.Next != nil {
		return p.Next.Validate(file)
	}
	return nil
}

func (p SizePolicy) ObjectName(file transfer.File) (string, error) {
	if p.Next != nil {
		return p.Next.ObjectName(file)
	}
	return "", nil
}

func (p SizePolicy) Register(ctx context.Context, file transfer.File, objectName string) error {
	if p.Next != nil {
		return p.Next.Register(ctx, file, objectName)
	}
	return nil
}
