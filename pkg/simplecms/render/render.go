// Package render turns product and blog block lists into the HTML the
// public site shows on its detail pages.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	emptyParagraph = regexp.MustCompile(`(?i)<p[^>]*>\s*</p>`)
	imageFile      = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp|jfif)$`)
	videoFile      = regexp.MustCompile(`(?i)\.(mp4|webm|ogg)$`)
)

// Renderer renders entities with a parsed template set
type Renderer struct {
	tmpl         *template.Template
	uploadBase   string
	downloadBase string
}

// Option configures a Renderer
type Option func(*Renderer)

// WithUploadBase sets the public path uploaded files are served from.
func WithUploadBase(base string) Option {
	return func(r *Renderer) {
		r.uploadBase = strings.TrimSuffix(base, "/") + "/"
	}
}

// WithDownloadBase sets the path of the attachment download endpoint.
func WithDownloadBase(base string) Option {
	return func(r *Renderer) {
		r.downloadBase = strings.TrimSuffix(base, "/") + "/"
	}
}

// New parses the embedded templates
func New(options ...Option) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r := &Renderer{
		tmpl:         tmpl,
		uploadBase:   simplecms.PublicUploadPath,
		downloadBase: "/api/download/",
	}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

type page struct {
	Class  string
	Title  string
	Cover  string
	Meta   []string
	Blocks []view
}

type view struct {
	Kind     string
	Class    string
	Text     string
	HTML     template.HTML
	Src      string
	Alt      string
	MimeType string
	Href     string
	Download bool
	Images   []string
	Table    simplecms.TableData
}

// Product writes the detail page fragment of a product
func (r *Renderer) Product(w io.Writer, p *simplecms.Product) error {
	pg := page{Class: "product", Title: p.Title, Blocks: r.views(p.Contents)}
	if p.CoverImage != "" {
		pg.Cover = r.uploadURL(p.CoverImage)
	}
	if p.Category != "" {
		pg.Meta = append(pg.Meta, simplecms.CategoryLabel(p.Category))
	}
	if p.Brand != "" {
		pg.Meta = append(pg.Meta, p.Brand)
	}
	return r.tmpl.ExecuteTemplate(w, "page", pg)
}

// Blog writes the detail page fragment of a blog post
func (r *Renderer) Blog(w io.Writer, b *simplecms.Blog) error {
	pg := page{Class: "blog", Title: b.Title, Blocks: r.views(b.Contents)}
	if !b.CreatedAt.IsZero() {
		pg.Meta = []string{b.CreatedAt.Format("January 2, 2006")}
	}
	return r.tmpl.ExecuteTemplate(w, "page", pg)
}

// Blocks writes just the block list
func (r *Renderer) Blocks(w io.Writer, blocks simplecms.Blocks) error {
	for _, v := range r.views(blocks) {
		if err := r.tmpl.ExecuteTemplate(w, "block", v); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) views(blocks simplecms.Blocks) []view {
	out := make([]view, 0, len(blocks))
	for _, b := range blocks {
		if v, ok := r.view(b); ok {
			out = append(out, v)
		}
	}
	return out
}

// view maps a block to its template model. Blocks with no payload are
// skipped.
func (r *Renderer) view(b simplecms.ContentBlock) (view, bool) {
	switch b.Type {
	case simplecms.BlockTitle:
		text := strings.TrimSpace(b.Text())
		return view{Kind: "title", Text: text}, text != ""

	case simplecms.BlockContent, simplecms.BlockTechSpecifications:
		return richText(string(b.Type), b.Text())

	case simplecms.BlockSpecification:
		text := strings.TrimSpace(b.Text())
		if text == "" {
			return view{}, false
		}
		if b.SubType == simplecms.SubTypeImage || imageFile.MatchString(text) {
			return view{Kind: "figure", Class: "specification", Src: r.uploadURL(text), Alt: "Specification Image"}, true
		}
		return richText("specification", text)

	case simplecms.BlockImage:
		files := b.Images()
		if len(files) == 0 {
			return view{}, false
		}
		urls := make([]string, 0, len(files))
		for _, f := range files {
			urls = append(urls, r.uploadURL(f))
		}
		return view{Kind: "gallery", Images: urls}, true

	case simplecms.BlockVideo:
		if d, ok := b.Data.(simplecms.SourceData); ok {
			return r.video(d)
		}

	case simplecms.BlockTable:
		if d, ok := b.Data.(simplecms.TableData); ok && len(d.Headers) > 0 {
			return view{Kind: "table", Table: d}, true
		}

	case simplecms.BlockManualDownload:
		if d, ok := b.Data.(simplecms.SourceData); ok {
			return r.manual(d)
		}
	}
	return view{}, false
}

func richText(class, html string) (view, bool) {
	html = strings.TrimSpace(emptyParagraph.ReplaceAllString(html, ""))
	if html == "" {
		return view{}, false
	}
	return view{Kind: "html", Class: class, HTML: template.HTML(html)}, true
}

func (r *Renderer) video(d simplecms.SourceData) (view, bool) {
	src := strings.TrimSpace(d.Source)
	switch d.Kind() {
	case simplecms.SourceNone:
		return view{}, false
	case simplecms.SourceUpload:
		return view{Kind: "video", Src: r.uploadBase + d.UploadKey(), MimeType: "video/mp4"}, true
	case simplecms.SourceYouTube:
		return view{Kind: "embed", Src: "https://www.youtube.com/embed/" + d.YouTubeID() + "?autoplay=1&mute=1&controls=1&rel=0"}, true
	case simplecms.SourceVimeo:
		return view{Kind: "embed", Src: "https://player.vimeo.com/video/" + d.VimeoID() + "?autoplay=1&muted=1"}, true
	}
	if videoFile.MatchString(src) {
		return view{Kind: "video", Src: src, MimeType: "video/mp4"}, true
	}
	return view{Kind: "link", Src: src}, true
}

func (r *Renderer) manual(d simplecms.SourceData) (view, bool) {
	src := strings.TrimSpace(d.Source)
	switch d.Kind() {
	case simplecms.SourceNone:
		return view{}, false
	case simplecms.SourceUpload:
		filename := path.Base(d.UploadKey())
		return view{
			Kind:     "manual",
			Text:     simplecms.UploadDisplayName(filename),
			Href:     r.downloadBase + filename,
			Download: true,
		}, true
	}
	name := path.Base(src)
	if name == "" || name == "." || name == "/" {
		name = "Manual"
	}
	return view{Kind: "manual", Text: name, Href: src}, true
}

// uploadURL resolves a stored filename to its public URL. Absolute URLs are
// left alone.
func (r *Renderer) uploadURL(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		return name
	}
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimPrefix(name, simplecms.UploadPrefix)
	return r.uploadBase + name
}
