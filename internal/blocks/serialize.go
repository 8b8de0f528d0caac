package blocks

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// Serialize renders a block document to presentational HTML for previews and
// exports. The output is deterministic for a given input. Blocks whose tag is
// unknown, or whose payload does not decode, contribute nothing; the editor
// may hold block types this serializer has never heard of and that must never
// be an error.
func Serialize(doc Document) string {
	var sb strings.Builder
	sb.WriteString(`<div class="doc-content">`)
	sb.WriteString("\n")
	for _, block := range doc.Blocks {
		writeBlock(&sb, block)
	}
	sb.WriteString("</div>")
	return sb.String()
}

func writeBlock(sb *strings.Builder, block Block) {
	switch block.Type {
	case BlockTypeHeader:
		var data HeaderData
		if json.Unmarshal(block.Data, &data) != nil {
			return
		}
		level := data.Level
		if level < 1 || level > 6 {
			level = 2
		}
		fmt.Fprintf(sb, "<h%d>%s</h%d>\n", level, data.Text, level)

	case BlockTypeParagraph:
		var data ParagraphData
		if json.Unmarshal(block.Data, &data) != nil {
			return
		}
		fmt.Fprintf(sb, "<p>%s</p>\n", data.Text)

	case BlockTypeList:
		var data ListData
		if json.Unmarshal(block.Data, &data) != nil {
			return
		}
		tag := "ul"
		if data.Style == "ordered" {
			tag = "ol"
		}
		fmt.Fprintf(sb, "<%s>\n", tag)
		for _, item := range data.Items {
			fmt.Fprintf(sb, "<li>%s</li>\n", item)
		}
		fmt.Fprintf(sb, "</%s>\n", tag)

	case BlockTypeImage:
		var data ImageData
		if json.Unmarshal(block.Data, &data) != nil {
			return
		}
		var attrs strings.Builder
		if data.Width > 0 {
			fmt.Fprintf(&attrs, ` width="%d"`, data.Width)
		}
		if data.Height > 0 {
			fmt.Fprintf(&attrs, ` height="%d"`, data.Height)
		}
		if data.Caption != "" {
			fmt.Fprintf(sb, "<figure><img src=%q alt=%q%s/><figcaption>%s</figcaption></figure>\n",
				data.URL, data.Caption, attrs.String(), data.Caption)
		} else {
			fmt.Fprintf(sb, "<img src=%q%s/>\n", data.URL, attrs.String())
		}

	case BlockTypeQuote:
		var data QuoteData
		if json.Unmarshal(block.Data, &data) != nil {
			return
		}
		if data.Caption != "" {
			fmt.Fprintf(sb, "<blockquote><p>%s</p><cite>%s</cite></blockquote>\n", data.Text, data.Caption)
		} else {
			fmt.Fprintf(sb, "<blockquote><p>%s</p></blockquote>\n", data.Text)
		}

	case BlockTypeDelimiter:
		sb.WriteString("<hr/>\n")

	case BlockTypeTable:
		var data TableData
		if json.Unmarshal(block.Data, &data) != nil {
			return
		}
		sb.WriteString("<table>\n")
		for _, row := range data.Content {
			sb.WriteString("<tr>")
			for _, cell := range row {
				fmt.Fprintf(sb, "<td>%s</td>", cell)
			}
			sb.WriteString("</tr>\n")
		}
		sb.WriteString("</table>\n")

	case BlockTypeCode:
		var data CodeData
		if json.Unmarshal(block.Data, &data) != nil {
			return
		}
		fmt.Fprintf(sb, "<pre><code>%s</code></pre>\n", html.EscapeString(data.Code))

	case BlockTypeChecklist:
		var data ChecklistData
		if json.Unmarshal(block.Data, &data) != nil {
			return
		}
		sb.WriteString("<ul class=\"checklist\">\n")
		for _, item := range data.Items {
			state := "unchecked"
			if item.Checked {
				state = "checked"
			}
			fmt.Fprintf(sb, "<li class=%q>%s</li>\n", state, item.Text)
		}
		sb.WriteString("</ul>\n")
	}
	// Unknown tags are skipped on purpose.
}
