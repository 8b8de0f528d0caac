package blocks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func raw(s string) json.RawMessage { return json.RawMessage(s) }

func TestSerializeEmptyDocument(t *testing.T) {
	out := Serialize(Document{})
	assert.Equal(t, "<div class=\"doc-content\">\n</div>", out)

	out = Serialize(Document{Blocks: []Block{}})
	assert.Equal(t, "<div class=\"doc-content\">\n</div>", out)
}

func TestSerializeUnknownTypeSkipped(t *testing.T) {
	withUnknown := Document{Blocks: []Block{
		{Type: BlockTypeParagraph, Data: raw(`{"text":"hello"}`)},
		{Type: "embed", Data: raw(`{"service":"youtube"}`)},
	}}
	withoutUnknown := Document{Blocks: []Block{
		{Type: BlockTypeParagraph, Data: raw(`{"text":"hello"}`)},
	}}
	assert.Equal(t, Serialize(withoutUnknown), Serialize(withUnknown))
}

func TestSerializeMalformedDataSkipped(t *testing.T) {
	doc := Document{Blocks: []Block{
		{Type: BlockTypeHeader, Data: raw(`"not an object"`)},
	}}
	assert.Equal(t, Serialize(Document{}), Serialize(doc))
}

func TestSerializeHeader(t *testing.T) {
	doc := Document{Blocks: []Block{
		{Type: BlockTypeHeader, Data: raw(`{"text":"Title","level":3}`)},
	}}
	assert.Contains(t, Serialize(doc), "<h3>Title</h3>")

	// Out-of-range levels fall back to h2.
	doc.Blocks[0].Data = raw(`{"text":"Title","level":9}`)
	assert.Contains(t, Serialize(doc), "<h2>Title</h2>")
}

func TestSerializeLists(t *testing.T) {
	ordered := Document{Blocks: []Block{
		{Type: BlockTypeList, Data: raw(`{"style":"ordered","items":["a","b"]}`)},
	}}
	out := Serialize(ordered)
	assert.Contains(t, out, "<ol>")
	assert.Contains(t, out, "<li>a</li>")
	assert.Contains(t, out, "<li>b</li>")

	unordered := Document{Blocks: []Block{
		{Type: BlockTypeList, Data: raw(`{"style":"unordered","items":["x"]}`)},
	}}
	assert.Contains(t, Serialize(unordered), "<ul>")
}

func TestSerializeImage(t *testing.T) {
	plain := Document{Blocks: []Block{
		{Type: BlockTypeImage, Data: raw(`{"url":"https://x/y.png"}`)},
	}}
	assert.Contains(t, Serialize(plain), `<img src="https://x/y.png"/>`)

	sized := Document{Blocks: []Block{
		{Type: BlockTypeImage, Data: raw(`{"url":"https://x/y.png","caption":"fig","width":640,"height":480}`)},
	}}
	out := Serialize(sized)
	assert.Contains(t, out, `width="640"`)
	assert.Contains(t, out, `height="480"`)
	assert.Contains(t, out, "<figcaption>fig</figcaption>")
}

func TestSerializeQuoteTableCodeChecklistDelimiter(t *testing.T) {
	doc := Document{Blocks: []Block{
		{Type: BlockTypeQuote, Data: raw(`{"text":"wise","caption":"someone"}`)},
		{Type: BlockTypeDelimiter, Data: raw(`{}`)},
		{Type: BlockTypeTable, Data: raw(`{"content":[["a","b"],["c","d"]]}`)},
		{Type: BlockTypeCode, Data: raw(`{"code":"if a < b {}"}`)},
		{Type: BlockTypeChecklist, Data: raw(`{"items":[{"text":"done","checked":true},{"text":"todo","checked":false}]}`)},
	}}
	out := Serialize(doc)
	assert.Contains(t, out, "<blockquote><p>wise</p><cite>someone</cite></blockquote>")
	assert.Contains(t, out, "<hr/>")
	assert.Contains(t, out, "<tr><td>a</td><td>b</td></tr>")
	assert.Contains(t, out, "<pre><code>if a &lt; b {}</code></pre>")
	assert.Contains(t, out, `<li class="checked">done</li>`)
	assert.Contains(t, out, `<li class="unchecked">todo</li>`)
}

func TestSerializeDeterministic(t *testing.T) {
	doc := Document{Blocks: []Block{
		{Type: BlockTypeHeader, Data: raw(`{"text":"T","level":1}`)},
		{Type: BlockTypeParagraph, Data: raw(`{"text":"body"}`)},
	}}
	assert.Equal(t, Serialize(doc), Serialize(doc))
}
