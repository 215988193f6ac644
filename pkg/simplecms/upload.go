package simplecms

import (
	"fmt"
	"math/rand/v2"
	"mime"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
)

// UploadKind classifies an accepted upload
type UploadKind string

const (
	UploadImage UploadKind = "image"
	UploadPDF   UploadKind = "pdf"
	UploadVideo UploadKind = "video"
)

// UploadLimits caps the size of each upload kind, in bytes
type UploadLimits struct {
	MaxImageBytes int64
	MaxPDFBytes   int64
	MaxVideoBytes int64
}

// DefaultUploadLimits returns 10MB for images and PDFs and 200MB for videos.
func DefaultUploadLimits() UploadLimits {
	return UploadLimits{
		MaxImageBytes: 10 << 20,
		MaxPDFBytes:   10 << 20,
		MaxVideoBytes: 200 << 20,
	}
}

func (l UploadLimits) max(kind UploadKind) int64 {
	switch kind {
	case UploadImage:
		return l.MaxImageBytes
	case UploadPDF:
		return l.MaxPDFBytes
	case UploadVideo:
		return l.MaxVideoBytes
	}
	return 0
}

// Largest returns the biggest of the configured limits.
func (l UploadLimits) Largest() int64 {
	return max(l.MaxImageBytes, l.MaxPDFBytes, l.MaxVideoBytes)
}

var (
	imageTypes = regexp.MustCompile(`jpeg|jpg|png|gif|webp`)
	videoExts  = map[string]bool{"mp4": true, "webm": true, "ogg": true, "mov": true}
)

func accepts(kind UploadKind, ext, mimeType string) bool {
	switch kind {
	case UploadImage:
		return ext != "" && imageTypes.MatchString(ext) && imageTypes.MatchString(mimeType)
	case UploadPDF:
		return ext == "pdf" && mimeType == "application/pdf"
	case UploadVideo:
		return videoExts[ext] && strings.HasPrefix(mimeType, "video/")
	}
	return false
}

// ClassifyUpload returns the first kind in allowed that accepts f, or a
// ValidationError when none does or the file is over its size limit.
func ClassifyUpload(f UploadedFile, limits UploadLimits, allowed ...UploadKind) (UploadKind, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Filename)), ".")
	mimeType := UploadContentType(f)
	for _, kind := range allowed {
		if !accepts(kind, ext, mimeType) {
			continue
		}
		if limit := limits.max(kind); limit > 0 && f.Size > limit {
			return "", uploadError(validation.NewError("validation_upload_size",
				fmt.Sprintf("file is larger than %dMB", limit>>20)))
		}
		return kind, nil
	}
	names := make([]string, 0, len(allowed))
	for _, kind := range allowed {
		names = append(names, string(kind))
	}
	return "", uploadError(validation.NewError("validation_upload_type",
		fmt.Sprintf("only %s files are allowed", strings.Join(names, ", "))))
}

// UploadContentType returns the media type of f without parameters. Generic
// or missing client types fall back to the filename extension.
func UploadContentType(f UploadedFile) string {
	mimeType := strings.ToLower(f.ContentType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mime.TypeByExtension(strings.ToLower(filepath.Ext(f.Filename)))
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}

func uploadError(err error) error {
	return &ValidationError{Entity: "upload", Err: validation.Errors{"file": err}}
}

// NewObjectKey returns "<unix millis>-<random 9 digits><ext>".
func NewObjectKey(now time.Time, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%d-%d%s", now.UnixMilli(), rand.IntN(1_000_000_000), ext)
}

// NewNamedObjectKey returns "<unix millis>-<slug of the base name><ext>".
func NewNamedObjectKey(now time.Time, filename string) string {
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), slugBase(filename), strings.ToLower(filepath.Ext(filename)))
}

// NewUploadObjectKey returns "<unix millis>-<random 9 digits>-<slug of the
// base name><ext>". UploadDisplayName recovers the readable part.
func NewUploadObjectKey(now time.Time, filename string) string {
	return fmt.Sprintf("%d-%d-%s%s", now.UnixMilli(), rand.IntN(1_000_000_000),
		slugBase(filename), strings.ToLower(filepath.Ext(filename)))
}

var uploadKeyPrefix = regexp.MustCompile(`^\d+-\d+-`)

// UploadDisplayName strips the "<millis>-<random>-" prefix of an upload key.
// Keys without the prefix are returned unchanged.
func UploadDisplayName(key string) string {
	name := path.Base(key)
	if stripped := uploadKeyPrefix.ReplaceAllString(name, ""); stripped != "" {
		return stripped
	}
	return name
}

func slugBase(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	name, err := slug.Normalize(base)
	if err != nil || name == "" {
		return "file"
	}
	return name
}
