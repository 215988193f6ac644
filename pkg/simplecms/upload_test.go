package simplecms_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

func TestClassifyUpload(t *testing.T) {
	limits := simplecms.UploadLimits{MaxImageBytes: 100, MaxPDFBytes: 200, MaxVideoBytes: 1000}
	all := []simplecms.UploadKind{simplecms.UploadImage, simplecms.UploadPDF, simplecms.UploadVideo}

	tests := []struct {
		name     string
		file     simplecms.UploadedFile
		allowed  []simplecms.UploadKind
		wantKind simplecms.UploadKind
		wantErr  bool
	}{
		{"png", simplecms.UploadedFile{Filename: "a.png", ContentType: "image/png", Size: 10}, all, simplecms.UploadImage, false},
		{"jpeg upper case", simplecms.UploadedFile{Filename: "A.JPG", ContentType: "image/jpeg", Size: 10}, all, simplecms.UploadImage, false},
		{"pdf from extension", simplecms.UploadedFile{Filename: "m.pdf", ContentType: "application/octet-stream", Size: 10}, all, simplecms.UploadPDF, false},
		{"mp4", simplecms.UploadedFile{Filename: "v.mp4", ContentType: "video/mp4", Size: 999}, all, simplecms.UploadVideo, false},
		{"image over limit", simplecms.UploadedFile{Filename: "a.png", ContentType: "image/png", Size: 101}, all, "", true},
		{"video limit applies to video", simplecms.UploadedFile{Filename: "v.webm", ContentType: "video/webm", Size: 1001}, all, "", true},
		{"pdf not allowed", simplecms.UploadedFile{Filename: "m.pdf", ContentType: "application/pdf", Size: 10}, []simplecms.UploadKind{simplecms.UploadImage}, "", true},
		{"extension and type disagree", simplecms.UploadedFile{Filename: "a.png", ContentType: "text/plain", Size: 10}, all, "", true},
		{"no extension", simplecms.UploadedFile{Filename: "README", ContentType: "image/png", Size: 10}, all, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := simplecms.ClassifyUpload(tt.file, limits, tt.allowed...)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, simplecms.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestUploadContentType(t *testing.T) {
	assert.Equal(t, "image/png", simplecms.UploadContentType(simplecms.UploadedFile{Filename: "a.png", ContentType: "IMAGE/PNG"}))
	assert.Equal(t, "application/pdf", simplecms.UploadContentType(simplecms.UploadedFile{Filename: "m.pdf"}))
	assert.Equal(t, "text/plain", simplecms.UploadContentType(simplecms.UploadedFile{Filename: "n.txt", ContentType: "text/plain; charset=utf-8"}))
}

func TestObjectKeys(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	key := simplecms.NewObjectKey(now, "Brochure.PDF")
	assert.Regexp(t, regexp.MustCompile(`^1700000000000-\d{1,9}\.pdf$`), key)

	named := simplecms.NewNamedObjectKey(now, "logo.png")
	assert.Equal(t, "1700000000000-logo.png", named)

	fallback := simplecms.NewNamedObjectKey(now, "!!!.png")
	assert.Regexp(t, regexp.MustCompile(`^1700000000000-[a-z0-9-]+\.png$`), fallback)
}

func TestUploadObjectKey(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	key := simplecms.NewUploadObjectKey(now, "FA-200 Installation Guide.PDF")
	assert.Regexp(t, regexp.MustCompile(`^1700000000000-\d{1,9}-fa-200-installation-guide\.pdf$`), key)
	assert.Equal(t, "fa-200-installation-guide.pdf", simplecms.UploadDisplayName(key))

	assert.Regexp(t, regexp.MustCompile(`^1700000000000-\d{1,9}-file\.mp4$`), simplecms.NewUploadObjectKey(now, "???.mp4"))
}

func TestUploadDisplayName(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"1700000000000-123456789-manual.pdf", "manual.pdf"},
		{"uploads/1700000000000-123456789-manual.pdf", "manual.pdf"},
		{"1700000000000-123456789.pdf", "1700000000000-123456789.pdf"},
		{"home-logos/1700000000000-acme.png", "1700000000000-acme.png"},
		{"guide.pdf", "guide.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, simplecms.UploadDisplayName(tt.key))
		})
	}
}

func TestUploadLimitsLargest(t *testing.T) {
	assert.Equal(t, int64(200<<20), simplecms.DefaultUploadLimits().Largest())
	assert.Equal(t, int64(30), simplecms.UploadLimits{MaxImageBytes: 10, MaxPDFBytes: 30, MaxVideoBytes: 20}.Largest())
}
