package dispatch

import "path"

const (
	contentTypeText   = "text/plain"
	contentTypeBinary = "application/octet-stream"
)

// ContentType picks the Content-Type for a file from its extension. The
// match is case-sensitive.
func ContentType(target string) string {
	switch ext := path.Ext(target); ext {
	case ".txt":
		return contentTypeText
	case ".png", ".gif", ".jpeg":
		return "image/" + ext[1:]
	default:
		return contentTypeBinary
	}
}
