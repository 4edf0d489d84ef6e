package attachment

import (
	"fmt"

	"github.com/RebotePadel/GameHome/internal/apperror"
)

const (
	// MaxFileSize is the per-file upload limit (50 MB).
	MaxFileSize int64 = 50 << 20
	// MaxFiles is how many files one message may carry.
	MaxFiles = 10
)

// allowedMIME lists the upload types a message may carry.
var allowedMIME = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"video/mp4":       true,
	"video/quicktime": true,
	"video/x-msvideo": true,
	"application/pdf": true,
}

// Policy bounds what a single message upload may contain. The per-file
// size limit is enforced by Store.Stage while copying.
type Policy struct {
	MaxFiles int
	Allowed  map[string]bool
}

// DefaultPolicy returns the limits the SPA is built against.
func DefaultPolicy() Policy {
	return Policy{
		MaxFiles: MaxFiles,
		Allowed:  allowedMIME,
	}
}

// CheckType rejects a MIME type outside the allowlist.
func (p Policy) CheckType(filename, mimetype string) error {
	if !p.Allowed[mimetype] {
		return apperror.ValidationFailed("files",
			fmt.Sprintf("file type not allowed: %s (%s)", filename, mimetype))
	}
	return nil
}

// CheckCount rejects the n-th file when it exceeds MaxFiles.
func (p Policy) CheckCount(n int) error {
	if n > p.MaxFiles {
		return apperror.ValidationFailed("files",
			fmt.Sprintf("too many files: at most %d per message", p.MaxFiles))
	}
	return nil
}
