package render_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/render"
	"github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
	memorystorage "github.com/tendant/simple-cms/pkg/simplecms/storage/memory"
)

func renderBlocks(t *testing.T, blocks ...simplecms.ContentBlock) string {
	t.Helper()
	r, err := render.New()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.Blocks(&buf, simplecms.Blocks(blocks)))
	return buf.String()
}

func TestRenderer_Title(t *testing.T) {
	out := renderBlocks(t, simplecms.NewTextBlock(simplecms.BlockTitle, "Panels & Detectors"))
	assert.Contains(t, out, "<h2>Panels &amp; Detectors</h2>")
}

func TestRenderer_RichTextIsTrusted(t *testing.T) {
	out := renderBlocks(t,
		simplecms.NewTextBlock(simplecms.BlockContent, "<p>Intro <strong>bold</strong></p><p> </p>"),
		simplecms.NewTextBlock(simplecms.BlockTechSpecifications, "<ul><li>24V</li></ul>"),
	)
	assert.Contains(t, out, `<div class="content"><p>Intro <strong>bold</strong></p></div>`)
	assert.Contains(t, out, `<div class="techSpecifications"><ul><li>24V</li></ul></div>`)
	assert.NotContains(t, out, "<p> </p>")
}

func TestRenderer_SkipsEmptyBlocks(t *testing.T) {
	out := renderBlocks(t,
		simplecms.NewTextBlock(simplecms.BlockContent, "<p></p>"),
		simplecms.NewTextBlock(simplecms.BlockVideo, ""),
		simplecms.NewImageBlock(),
	)
	assert.Empty(t, strings.TrimSpace(out))
}

func TestRenderer_Specification(t *testing.T) {
	out := renderBlocks(t,
		simplecms.NewSpecificationImageBlock("spec.png"),
		simplecms.NewTextBlock(simplecms.BlockSpecification, "chart.JFIF"),
		simplecms.NewTextBlock(simplecms.BlockSpecification, "<p>Rated 24V</p>"),
	)
	assert.Contains(t, out, `<img src="/uploads/spec.png" alt="Specification Image">`)
	assert.Contains(t, out, `<img src="/uploads/chart.JFIF"`)
	assert.Contains(t, out, `<div class="specification"><p>Rated 24V</p></div>`)
}

func TestRenderer_Gallery(t *testing.T) {
	out := renderBlocks(t, simplecms.NewImageBlock("a.jpg", "uploads/b.jpg", "https://cdn.example.com/c.jpg"))
	assert.Contains(t, out, `<img src="/uploads/a.jpg"`)
	assert.Contains(t, out, `<img src="/uploads/b.jpg"`)
	assert.Contains(t, out, `<img src="https://cdn.example.com/c.jpg"`)
}

func TestRenderer_Video(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"upload", "uploads/1700000000000-123.mp4", `<source src="/uploads/1700000000000-123.mp4" type="video/mp4">`},
		{"youtube watch", "https://www.youtube.com/watch?v=abc123&t=5", `src="https://www.youtube.com/embed/abc123?autoplay=1`},
		{"youtube short", "https://youtu.be/xyz789?si=foo", `src="https://www.youtube.com/embed/xyz789?autoplay=1`},
		{"vimeo", "https://vimeo.com/76979871", `src="https://player.vimeo.com/video/76979871?autoplay=1`},
		{"direct file", "https://cdn.example.com/demo.webm", `<source src="https://cdn.example.com/demo.webm"`},
		{"other link", "https://example.com/watch", `<a href="https://example.com/watch" target="_blank"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := renderBlocks(t, simplecms.NewTextBlock(simplecms.BlockVideo, tt.source))
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestRenderer_Table(t *testing.T) {
	out := renderBlocks(t, simplecms.NewTableBlock(
		[]string{"Model", "Zones"},
		[][]string{{"FP-1", "<8>"}, {"FP-2", "16"}},
	))
	assert.Contains(t, out, "<th>Model</th><th>Zones</th>")
	assert.Contains(t, out, "<tr><td>FP-1</td><td>&lt;8&gt;</td></tr>")
}

func TestRenderer_ManualDownload(t *testing.T) {
	t.Run("uploaded", func(t *testing.T) {
		out := renderBlocks(t, simplecms.NewTextBlock(simplecms.BlockManualDownload, "uploads/1700000000000-123456789-manual.pdf"))
		assert.Contains(t, out, `<a href="/api/download/1700000000000-123456789-manual.pdf" download>`)
		assert.Contains(t, out, "<p>manual.pdf</p>")
	})

	t.Run("external", func(t *testing.T) {
		out := renderBlocks(t, simplecms.NewTextBlock(simplecms.BlockManualDownload, "https://example.com/docs/guide.pdf"))
		assert.Contains(t, out, `<a href="https://example.com/docs/guide.pdf" target="_blank"`)
		assert.Contains(t, out, "<p>guide.pdf</p>")
	})
}

func TestRenderer_ManualFromUploadedAsset(t *testing.T) {
	svc, err := simplecms.New(
		simplecms.WithRepository(memory.New()),
		simplecms.WithBlobStore("memory", memorystorage.New()),
	)
	require.NoError(t, err)

	stored, err := svc.UploadAsset(context.Background(), simplecms.UploadedFile{
		Filename:    "FA-200 Installation Guide.pdf",
		ContentType: "application/pdf",
		Size:        8,
		Reader:      strings.NewReader("%PDF-1.4"),
	})
	require.NoError(t, err)

	out := renderBlocks(t, simplecms.NewTextBlock(simplecms.BlockManualDownload, stored.Path))
	assert.Contains(t, out, "<p>fa-200-installation-guide.pdf</p>")
	assert.Contains(t, out, `<a href="/api/download/`+stored.Key+`" download>`)
}

func TestRenderer_UnsafeURLsAreNeutralized(t *testing.T) {
	out := renderBlocks(t, simplecms.NewTextBlock(simplecms.BlockVideo, "javascript:alert(1)"))
	assert.Contains(t, out, `href="#ZgotmplZ"`)
}

func TestRenderer_Product(t *testing.T) {
	r, err := render.New(render.WithUploadBase("https://cdn.example.com/files"))
	require.NoError(t, err)

	p := &simplecms.Product{
		Title:      "Addressable Panel",
		Category:   "fire-alarm",
		Brand:      "Acme",
		CoverImage: "cover.png",
		Contents: simplecms.Blocks{
			simplecms.NewTextBlock(simplecms.BlockTitle, "Overview"),
			simplecms.NewImageBlock("a.jpg"),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, r.Product(&buf, p))
	out := buf.String()

	assert.Contains(t, out, `<article class="product">`)
	assert.Contains(t, out, "<h1>Addressable Panel</h1>")
	assert.Contains(t, out, `<img class="cover" src="https://cdn.example.com/files/cover.png"`)
	assert.Contains(t, out, "Fire Alarm System · Acme")
	assert.Less(t, strings.Index(out, "<h2>Overview</h2>"), strings.Index(out, `https://cdn.example.com/files/a.jpg`))
}

func TestRenderer_Blog(t *testing.T) {
	r, err := render.New()
	require.NoError(t, err)

	b := &simplecms.Blog{
		Title:     "Maintenance Tips",
		CreatedAt: time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC),
		Contents:  simplecms.Blocks{simplecms.NewTextBlock(simplecms.BlockContent, "<p>Test monthly.</p>")},
	}

	var buf bytes.Buffer
	require.NoError(t, r.Blog(&buf, b))
	out := buf.String()

	assert.Contains(t, out, `<article class="blog">`)
	assert.Contains(t, out, "March 5, 2024")
	assert.Contains(t, out, "<p>Test monthly.</p>")
}
