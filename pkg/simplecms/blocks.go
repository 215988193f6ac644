package simplecms

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// BlockType identifies the kind of a content block
type BlockType string

const (
	BlockTitle              BlockType = "title"
	BlockImage              BlockType = "image"
	BlockContent            BlockType = "content"
	BlockSpecification      BlockType = "specification"
	BlockVideo              BlockType = "video"
	BlockTechSpecifications BlockType = "techSpecifications"
	BlockTable              BlockType = "table"
	BlockManualDownload     BlockType = "manualDownload"
)

// BlockTypes lists every accepted block type in admin display order.
var BlockTypes = []BlockType{
	BlockTitle,
	BlockImage,
	BlockContent,
	BlockSpecification,
	BlockVideo,
	BlockTechSpecifications,
	BlockTable,
	BlockManualDownload,
}

// Valid reports whether t is one of the accepted block types.
func (t BlockType) Valid() bool {
	for _, known := range BlockTypes {
		if t == known {
			return true
		}
	}
	return false
}

// SubType refines a specification block into text or image
type SubType string

const (
	SubTypeText  SubType = "text"
	SubTypeImage SubType = "image"
)

var (
	ErrUnknownBlockType = errors.New("unknown block type")
	ErrUnknownSubType   = errors.New("unknown sub type")
	ErrBlockPayload     = errors.New("payload does not match block type")
	ErrTableShape       = errors.New("table row length does not match header count")
)

// BlockData is the payload of a content block. The concrete type is fixed
// by the block's Type and SubType:
//
//	title, content, techSpecifications, specification/text  TextData
//	specification/image                                      FileData
//	image                                                    ImageData
//	video, manualDownload                                    SourceData
//	table                                                    TableData
type BlockData interface {
	blockData()
}

// TextData holds plain or rich-text markup. Rich text is trusted HTML.
type TextData struct {
	Text string
}

// FileData references a single uploaded file by name
type FileData struct {
	Filename string
}

// ImageData is an ordered gallery of uploaded image filenames. Single
// records that the block was submitted in the legacy single-filename shape
// so it can be written back the same way.
type ImageData struct {
	Files  []string
	Single bool
}

// SourceData is a video or manual reference: an uploads/ path or a URL
type SourceData struct {
	Source string
}

// TableData is a header row plus data rows of equal width
type TableData struct {
	Headers []string   `json:"headers" bson:"headers"`
	Rows    [][]string `json:"rows" bson:"rows"`
}

func (TextData) blockData()   {}
func (FileData) blockData()   {}
func (ImageData) blockData()  {}
func (SourceData) blockData() {}
func (TableData) blockData()  {}

// ContentBlock is one entry of an entity's ordered block list
type ContentBlock struct {
	Type    BlockType
	SubType SubType
	Order   int
	Data    BlockData
}

// NewTextBlock builds a block whose payload is a string: title, content,
// techSpecifications, specification text, video or manualDownload.
func NewTextBlock(t BlockType, text string) ContentBlock {
	data, err := DecodeBlockData(t, SubTypeText, text)
	if err != nil {
		data = TextData{Text: text}
	}
	return ContentBlock{Type: t, SubType: SubTypeText, Data: data}
}

// NewImageBlock builds an image gallery block.
func NewImageBlock(files ...string) ContentBlock {
	return ContentBlock{Type: BlockImage, SubType: SubTypeText, Data: ImageData{Files: files}}
}

// NewSpecificationImageBlock builds a specification block that shows an image.
func NewSpecificationImageBlock(filename string) ContentBlock {
	return ContentBlock{Type: BlockSpecification, SubType: SubTypeImage, Data: FileData{Filename: filename}}
}

// NewTableBlock builds a table block.
func NewTableBlock(headers []string, rows [][]string) ContentBlock {
	return ContentBlock{Type: BlockTable, SubType: SubTypeText, Data: TableData{Headers: headers, Rows: rows}}
}

// Value returns the payload in its stored shape: a string, a list of
// strings, or a TableData.
func (b ContentBlock) Value() any {
	switch d := b.Data.(type) {
	case TextData:
		return d.Text
	case FileData:
		return d.Filename
	case SourceData:
		return d.Source
	case ImageData:
		if d.Single && len(d.Files) <= 1 {
			if len(d.Files) == 0 {
				return ""
			}
			return d.Files[0]
		}
		if d.Files == nil {
			return []string{}
		}
		return d.Files
	case TableData:
		if d.Headers == nil {
			d.Headers = []string{}
		}
		if d.Rows == nil {
			d.Rows = [][]string{}
		}
		return d
	}
	return nil
}

// Images returns the gallery of an image block, or nil for other blocks.
func (b ContentBlock) Images() []string {
	if d, ok := b.Data.(ImageData); ok {
		return d.Files
	}
	return nil
}

// Text returns the string payload of a block, or "" when the payload is a
// list or a table.
func (b ContentBlock) Text() string {
	if s, ok := b.Value().(string); ok {
		return s
	}
	return ""
}

// normalizeSubType keeps "image" only on specification blocks.
func normalizeSubType(t BlockType, st SubType) (SubType, error) {
	switch st {
	case "", SubTypeText:
		return SubTypeText, nil
	case SubTypeImage:
		if t == BlockSpecification {
			return SubTypeImage, nil
		}
		return SubTypeText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSubType, st)
	}
}

// DecodeBlockData builds the typed payload for a block from a decoded
// value. v may be nil, a string, a []string or []any of strings, a
// TableData, or a map with "headers" and "rows".
func DecodeBlockData(t BlockType, st SubType, v any) (BlockData, error) {
	switch t {
	case BlockTitle, BlockContent, BlockTechSpecifications:
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		return TextData{Text: s}, nil
	case BlockSpecification:
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		if st == SubTypeImage {
			return FileData{Filename: s}, nil
		}
		return TextData{Text: s}, nil
	case BlockVideo, BlockManualDownload:
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		return SourceData{Source: strings.TrimSpace(s)}, nil
	case BlockImage:
		return asImage(v)
	case BlockTable:
		return asTable(v)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBlockType, t)
	}
}

func asString(v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	default:
		return "", fmt.Errorf("%w: expected a string, got %T", ErrBlockPayload, v)
	}
}

func asStrings(v any) ([]string, error) {
	switch list := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string(nil), list...), nil
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: item %d is %T, expected a string", ErrBlockPayload, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected a list of strings, got %T", ErrBlockPayload, v)
	}
}

func asImage(v any) (BlockData, error) {
	if s, ok := v.(string); ok {
		if s == "" {
			return ImageData{Files: []string{}, Single: true}, nil
		}
		return ImageData{Files: []string{s}, Single: true}, nil
	}
	files, err := asStrings(v)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []string{}
	}
	return ImageData{Files: files}, nil
}

func asTable(v any) (BlockData, error) {
	switch t := v.(type) {
	case nil:
		return TableData{Headers: []string{}, Rows: [][]string{}}, nil
	case TableData:
		return t, nil
	case map[string]any:
		headers, err := asStrings(t["headers"])
		if err != nil {
			return nil, fmt.Errorf("headers: %w", err)
		}
		var rows [][]string
		switch raw := t["rows"].(type) {
		case nil:
		case [][]string:
			rows = raw
		case []any:
			rows = make([][]string, 0, len(raw))
			for i, item := range raw {
				row, err := asStrings(item)
				if err != nil {
					return nil, fmt.Errorf("row %d: %w", i, err)
				}
				rows = append(rows, row)
			}
		default:
			return nil, fmt.Errorf("%w: rows must be a list", ErrBlockPayload)
		}
		if headers == nil {
			headers = []string{}
		}
		if rows == nil {
			rows = [][]string{}
		}
		for i := range rows {
			if rows[i] == nil {
				rows[i] = []string{}
			}
		}
		return TableData{Headers: headers, Rows: rows}, nil
	default:
		return nil, fmt.Errorf("%w: expected an object with headers and rows, got %T", ErrBlockPayload, v)
	}
}

// Validate checks the block type, the payload type and the table shape.
func (b ContentBlock) Validate() error {
	if !b.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownBlockType, b.Type)
	}
	switch d := b.Data.(type) {
	case nil:
		return fmt.Errorf("%w: missing data", ErrBlockPayload)
	case TableData:
		if b.Type != BlockTable {
			return ErrBlockPayload
		}
		for i, row := range d.Rows {
			if len(row) != len(d.Headers) {
				return fmt.Errorf("%w: row %d has %d cells, expected %d", ErrTableShape, i, len(row), len(d.Headers))
			}
		}
	case ImageData:
		if b.Type != BlockImage {
			return ErrBlockPayload
		}
	case FileData:
		if b.Type != BlockSpecification || b.SubType != SubTypeImage {
			return ErrBlockPayload
		}
	case SourceData:
		if b.Type != BlockVideo && b.Type != BlockManualDownload {
			return ErrBlockPayload
		}
	case TextData:
		switch b.Type {
		case BlockTitle, BlockContent, BlockTechSpecifications:
		case BlockSpecification:
			if b.SubType == SubTypeImage {
				return ErrBlockPayload
			}
		default:
			return ErrBlockPayload
		}
	}
	return nil
}

// PrepareBlocks returns a validated copy of blocks with sub types
// normalized and Order set to each block's index. Submitted Order values
// are ignored.
func PrepareBlocks(blocks []ContentBlock) (Blocks, error) {
	out := make(Blocks, 0, len(blocks))
	for i, b := range blocks {
		st, err := normalizeSubType(b.Type, b.SubType)
		if err != nil {
			return nil, &BlockError{Index: i, Type: b.Type, Err: err}
		}
		b.SubType = st
		if b.Data == nil {
			if b.Data, err = DecodeBlockData(b.Type, st, nil); err != nil {
				return nil, &BlockError{Index: i, Type: b.Type, Err: err}
			}
		}
		// A text payload on a specification image block is its filename.
		if td, ok := b.Data.(TextData); ok && b.Type == BlockSpecification && st == SubTypeImage {
			b.Data = FileData{Filename: td.Text}
		}
		if fd, ok := b.Data.(FileData); ok && b.Type == BlockSpecification && st == SubTypeText {
			b.Data = TextData{Text: fd.Filename}
		}
		if err := b.Validate(); err != nil {
			return nil, &BlockError{Index: i, Type: b.Type, Err: err}
		}
		b.Data = cloneData(b.Data)
		b.Order = i
		out = append(out, b)
	}
	return out, nil
}

func cloneData(d BlockData) BlockData {
	switch v := d.(type) {
	case ImageData:
		v.Files = append([]string{}, v.Files...)
		return v
	case TableData:
		headers := append([]string{}, v.Headers...)
		rows := make([][]string, len(v.Rows))
		for i, row := range v.Rows {
			rows[i] = append([]string{}, row...)
		}
		return TableData{Headers: headers, Rows: rows}
	}
	return d
}

// CloneBlocks returns a deep copy of blocks.
func CloneBlocks(blocks Blocks) Blocks {
	if blocks == nil {
		return nil
	}
	out := make(Blocks, len(blocks))
	for i, b := range blocks {
		b.Data = cloneData(b.Data)
		out[i] = b
	}
	return out
}

type blockWire struct {
	Type    BlockType       `json:"type"`
	SubType SubType         `json:"subType,omitempty"`
	Data    json.RawMessage `json:"data"`
	Order   int             `json:"order"`
}

// MarshalJSON writes the block as {type, subType, data, order}.
func (b ContentBlock) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(b.Value())
	if err != nil {
		return nil, err
	}
	return json.Marshal(blockWire{
		Type:    b.Type,
		SubType: b.SubType,
		Data:    data,
		Order:   b.Order,
	})
}

// UnmarshalJSON decodes {type, subType, data, order} into a typed payload.
func (b *ContentBlock) UnmarshalJSON(raw []byte) error {
	var w blockWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return &BlockError{Index: -1, Err: err}
	}
	st, err := normalizeSubType(w.Type, w.SubType)
	if err != nil {
		return &BlockError{Index: -1, Type: w.Type, Err: err}
	}
	var v any
	if len(w.Data) > 0 {
		if err := json.Unmarshal(w.Data, &v); err != nil {
			return &BlockError{Index: -1, Type: w.Type, Err: err}
		}
	}
	data, err := DecodeBlockData(w.Type, st, v)
	if err != nil {
		return &BlockError{Index: -1, Type: w.Type, Err: err}
	}
	*b = ContentBlock{Type: w.Type, SubType: st, Order: w.Order, Data: data}
	return nil
}

// Blocks is an ordered content block list
type Blocks []ContentBlock

// MarshalJSON writes a nil list as [].
func (bs Blocks) MarshalJSON() ([]byte, error) {
	if bs == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]ContentBlock(bs))
}

// UnmarshalJSON decodes a block list and tags decode failures with the
// index of the offending block.
func (bs *Blocks) UnmarshalJSON(raw []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return err
	}
	out := make(Blocks, 0, len(items))
	for i, item := range items {
		var b ContentBlock
		if err := json.Unmarshal(item, &b); err != nil {
			var be *BlockError
			if errors.As(err, &be) {
				be.Index = i
				return be
			}
			return &BlockError{Index: i, Err: err}
		}
		out = append(out, b)
	}
	*bs = out
	return nil
}

// SourceKind classifies a video or manual reference
type SourceKind string

const (
	SourceNone    SourceKind = ""
	SourceUpload  SourceKind = "upload"
	SourceYouTube SourceKind = "youtube"
	SourceVimeo   SourceKind = "vimeo"
	SourceURL     SourceKind = "url"
)

// UploadPrefix marks a reference to a file stored by the upload endpoint.
const UploadPrefix = "uploads/"

// Kind classifies the reference. Uploaded paths win over URL matching.
func (d SourceData) Kind() SourceKind {
	s := strings.TrimSpace(d.Source)
	switch {
	case s == "":
		return SourceNone
	case strings.HasPrefix(s, UploadPrefix):
		return SourceUpload
	case d.YouTubeID() != "":
		return SourceYouTube
	case d.VimeoID() != "":
		return SourceVimeo
	default:
		return SourceURL
	}
}

// UploadKey returns the blob key of an uploaded source, or "".
func (d SourceData) UploadKey() string {
	s := strings.TrimSpace(d.Source)
	if !strings.HasPrefix(s, UploadPrefix) {
		return ""
	}
	return strings.TrimPrefix(s, UploadPrefix)
}

// YouTubeID extracts the video id from youtube.com/watch?v= and youtu.be/ links.
func (d SourceData) YouTubeID() string {
	s := d.Source
	if !strings.Contains(s, "youtube.com") && !strings.Contains(s, "youtu.be") {
		return ""
	}
	if strings.Contains(s, "youtube.com/watch?v=") {
		_, rest, _ := strings.Cut(s, "v=")
		id, _, _ := strings.Cut(rest, "&")
		return id
	}
	if _, rest, ok := strings.Cut(s, "youtu.be/"); ok {
		id, _, _ := strings.Cut(rest, "?")
		return id
	}
	return ""
}

// VimeoID extracts the video id from vimeo.com/ID links.
func (d SourceData) VimeoID() string {
	_, rest, ok := strings.Cut(d.Source, "vimeo.com/")
	if !ok {
		return ""
	}
	id, _, _ := strings.Cut(rest, "?")
	return id
}
