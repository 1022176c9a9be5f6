package file

type (
	UploadURLRequest struct {
		// ObjectName is optional; the server assigns a key when empty.
		ObjectName string `json:"objectName"`
		FileName   string `json:"fileName"`
		Size       int64  `json:"size"`
	}
	RegisterRequest struct {
		Name       string  `json:"name"`
		ObjectName string  `json:"objectName"`
		Size       int64   `json:"size"`
		Extension  string  `json:"extension"`
		FolderID   *string `json:"folderId"`
	}
)
