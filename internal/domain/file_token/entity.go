package file_token

import "time"

type Kind string

const (
	KindDownload Kind = "download"
	KindUpload   Kind = "upload"
)

// Token gates one storage object in filesystem mode. FileName is kept next
// to the object name because object keys carry no extension and the
// download route needs it to pick a Content-Type.
type Token struct {
	Value      string    `json:"token"`
	Kind       Kind      `json:"kind"`
	ObjectName string    `json:"objectName"`
	FileName   string    `json:"fileName"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

func (t *Token) Expired(now time.Time) bool { return now.After(t.ExpiresAt) }
