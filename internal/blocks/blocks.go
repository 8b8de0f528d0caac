package blocks

import "encoding/json"

// BlockType tags a block's payload. The set is closed but extensible:
// serialization skips tags it does not recognize instead of failing, so newer
// clients can store block types older servers have never seen.
type BlockType string

const (
	BlockTypeHeader    BlockType = "header"
	BlockTypeParagraph BlockType = "paragraph"
	BlockTypeList      BlockType = "list"
	BlockTypeImage     BlockType = "image"
	BlockTypeQuote     BlockType = "quote"
	BlockTypeDelimiter BlockType = "delimiter"
	BlockTypeTable     BlockType = "table"
	BlockTypeCode      BlockType = "code"
	BlockTypeChecklist BlockType = "checklist"
)

// Block is one tagged content unit within a page. Data holds the
// type-specific payload and is only decoded when the tag is recognized.
type Block struct {
	Type BlockType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Document is the block-structured content of a single page.
type Document struct {
	Blocks []Block `json:"blocks"`
}

type HeaderData struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
}

type ParagraphData struct {
	Text string `json:"text"`
}

type ListData struct {
	Style string   `json:"style"` // "ordered" or "unordered"
	Items []string `json:"items"`
}

type ImageData struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

type QuoteData struct {
	Text    string `json:"text"`
	Caption string `json:"caption,omitempty"`
}

type TableData struct {
	Content [][]string `json:"content"`
}

type CodeData struct {
	Code string `json:"code"`
}

type ChecklistItem struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

type ChecklistData struct {
	Items []ChecklistItem `json:"items"`
}
