package template

import (
	"strings"

	"github.com/dukex/formflow/pkg/models"
)

// Editor is the rich-text engine handle owned by the caller. The codec only reads
// and replaces its whole content.
type Editor interface {
	SetContent(content string)
	Content() string
}

// InMemoryEditor is an Editor that keeps its content in memory.
type InMemoryEditor struct {
	content string
}

// NewInMemoryEditor returns an empty editor.
func NewInMemoryEditor() *InMemoryEditor {
	return &InMemoryEditor{}
}

func (e *InMemoryEditor) SetContent(content string) {
	e.content = content
}

func (e *InMemoryEditor) Content() string {
	return e.content
}

// Codec binds an editor handle to the field catalog used for token resolution.
type Codec struct {
	editor   Editor
	options  []models.Option
	matching TokenMatching
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithTokenMatching selects how token markers are recognised on Save.
func WithTokenMatching(matching TokenMatching) CodecOption {
	return func(c *Codec) {
		c.matching = matching
	}
}

// NewCodec creates a codec over editor resolving tokens against catalog.
func NewCodec(editor Editor, catalog []models.Option, opts ...CodecOption) *Codec {
	codec := &Codec{
		editor:   editor,
		options:  catalog,
		matching: MatchLoose,
	}

	for _, opt := range opts {
		opt(codec)
	}

	return codec
}

// Load encodes canonical text into the editor.
func (c *Codec) Load(canonical string) error {
	if c.editor == nil {
		return ErrNoEditor
	}

	c.editor.SetContent(Encode(canonical, c.options))

	return nil
}

// Save decodes the editor content back to canonical text.
func (c *Codec) Save() (string, error) {
	if c.editor == nil {
		return "", ErrNoEditor
	}

	return decode(c.editor.Content(), c.matching)
}

// InsertToken appends a marker for the catalog field id at the end of the content.
func (c *Codec) InsertToken(id string) error {
	if c.editor == nil {
		return ErrNoEditor
	}

	option, ok := lookup(c.options, models.TokenText(id))
	if !ok {
		return ErrUnknownField
	}

	content := c.editor.Content()
	token := marker(option)

	for _, closing := range []string{"</p>", "</div>"} {
		if strings.HasSuffix(content, closing) {
			c.editor.SetContent(strings.TrimSuffix(content, closing) + token + closing)

			return nil
		}
	}

	c.editor.SetContent(content + token)

	return nil
}
