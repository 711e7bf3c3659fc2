package outline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// UnknownDocument is the title assumed when an outline file has none.
const UnknownDocument = "Unknown Document"

const outlineSchemaJSON = `{
  "type": "object",
  "properties": {
    "title": {"type": "string"},
    "outline": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["level", "text", "page"],
        "properties": {
          "level": {"enum": ["H1", "H2"]},
          "text": {"type": "string"},
          "page": {"type": "integer", "minimum": 1}
        }
      }
    }
  }
}`

var outlineSchema = jsonschema.MustCompileString("outline.schema.json", outlineSchemaJSON)

type fileFormat struct {
	Title    *string           `json:"title"`
	Headings []doctree.Heading `json:"outline"`
}

// Decode reads and validates an outline JSON document.
func Decode(r io.Reader) (doctree.Outline, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return doctree.Outline{}, fmt.Errorf("read outline: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return doctree.Outline{}, fmt.Errorf("decode outline: %w", err)
	}
	if err := outlineSchema.Validate(generic); err != nil {
		return doctree.Outline{}, fmt.Errorf("outline does not match schema: %w", err)
	}

	var f fileFormat
	if err := json.Unmarshal(raw, &f); err != nil {
		return doctree.Outline{}, fmt.Errorf("decode outline: %w", err)
	}

	o := doctree.Outline{Title: UnknownDocument, Headings: f.Headings}
	if f.Title != nil {
		o.Title = *f.Title
	}
	if o.Headings == nil {
		o.Headings = []doctree.Heading{}
	}
	return o, nil
}

// Load reads the outline file at path. A missing file is reported with an
// error satisfying errors.Is(err, fs.ErrNotExist).
func Load(path string) (doctree.Outline, error) {
	f, err := os.Open(path)
	if err != nil {
		return doctree.Outline{}, err
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes an outline as indented JSON with non-ASCII text preserved.
func Encode(w io.Writer, o doctree.Outline) error {
	if o.Headings == nil {
		o.Headings = []doctree.Heading{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return enc.Encode(o)
}

// WriteFile writes an outline to path, replacing any existing file atomically.
func WriteFile(path string, o doctree.Outline) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".outline-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := Encode(tmp, o); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode outline: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename outline: %w", err)
	}
	return nil
}

// FileName returns the outline file name for a document file name.
func FileName(docName string) string {
	return docName[:len(docName)-len(filepath.Ext(docName))] + ".json"
}
