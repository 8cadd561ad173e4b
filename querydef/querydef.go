// Package querydef reads and writes declarative query documents. A document
// names a root source with its nested joins, optional fragments merged into
// it, the selected columns and the target dialect:
//
//	name: cars
//	dialect: postgres
//	source:
//	  name: car
//	  entity: cars
//	  joins:
//	    - to: {name: engine, entity: engines}
//	      on: [{from: engine_id, to: id}]
//	columns: [cars.id, engines.power]
//
// Documents are authored as YAML and exchanged in msgpack form.
package querydef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/syssam/joinsql"
	"github.com/syssam/joinsql/dialect/sql"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type (
	// Document is a query definition.
	Document struct {
		Name    string    `yaml:"name" msgpack:"name" validate:"required"`
		Dialect string    `yaml:"dialect,omitempty" msgpack:"dialect,omitempty" validate:"omitempty,oneof=mysql postgres sqlite sqlserver"`
		Source  *Source   `yaml:"source" msgpack:"source" validate:"required"`
		Merge   []*Source `yaml:"merge,omitempty" msgpack:"merge,omitempty" validate:"dive,required"`
		Columns []string  `yaml:"columns,omitempty" msgpack:"columns,omitempty" validate:"dive,required"`
	}

	// Source is a source with its outgoing joins.
	Source struct {
		Name   string  `yaml:"name" msgpack:"name" validate:"required"`
		Entity string  `yaml:"entity,omitempty" msgpack:"entity,omitempty"`
		Joins  []*Join `yaml:"joins,omitempty" msgpack:"joins,omitempty" validate:"dive,required"`
	}

	// Join leads from its enclosing source to To.
	Join struct {
		Type string   `yaml:"type,omitempty" msgpack:"type,omitempty" validate:"omitempty,oneof=inner left"`
		To   *Source  `yaml:"to" msgpack:"to" validate:"required"`
		On   []*Field `yaml:"on" msgpack:"on" validate:"min=1,dive,required"`
	}

	// Field is one equality predicate of a join.
	Field struct {
		From string `yaml:"from" msgpack:"from" validate:"required"`
		To   string `yaml:"to" msgpack:"to" validate:"required"`
	}
)

// Parse decodes and validates a YAML document. Unknown keys are rejected.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	doc := &Document{}
	if err := dec.Decode(doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("querydef: empty document")
		}
		return nil, fmt.Errorf("querydef: decode yaml: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Marshal encodes the document as YAML.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("querydef: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("querydef: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// Encode encodes the document in its msgpack form.
func Encode(doc *Document) ([]byte, error) {
	data, err := msgpack.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("querydef: encode msgpack: %w", err)
	}
	return data, nil
}

// Decode decodes and validates a msgpack document.
func Decode(data []byte) (*Document, error) {
	doc := &Document{}
	if err := msgpack.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("querydef: decode msgpack: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// IsBinary reports whether path names a msgpack document.
func IsBinary(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mpk":
		return true
	default:
		return false
	}
}

// Load reads a document from a file, picking the format by extension.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("querydef: %w", err)
	}
	if IsBinary(path) {
		return Decode(data)
	}
	return Parse(data)
}

// Validate checks the document structure.
func (d *Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return joinsql.NewValidationError(d.Name, err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldError(fe))
		}
		return joinsql.NewValidationError(d.Name, errors.New(strings.Join(msgs, "; ")))
	}
	return nil
}

func fieldError(fe validator.FieldError) string {
	ns := strings.TrimPrefix(fe.Namespace(), "Document.")
	switch fe.Tag() {
	case "required":
		return ns + " is required"
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", ns, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", ns, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed on %q", ns, fe.Tag())
	}
}

// Build returns the join tree of the document: the root source with every
// merge fragment merged into it.
func (d *Document) Build() (*joinsql.Source, error) {
	if d.Source == nil {
		return nil, joinsql.NewValidationError(d.Name, errors.New("source is required"))
	}
	root, err := d.Source.build()
	if err != nil {
		return nil, err
	}
	for _, m := range d.Merge {
		frag, err := m.build()
		if err != nil {
			return nil, err
		}
		if err := root.MergeWith(frag); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func (s *Source) build() (*joinsql.Source, error) {
	src := joinsql.NewSource(s.Name, s.Entity)
	for _, j := range s.Joins {
		typ, err := joinsql.ParseJoinType(j.Type)
		if err != nil {
			return nil, err
		}
		to, err := j.To.build()
		if err != nil {
			return nil, err
		}
		join := src.Joins().AddNewJoinToWithType(to, typ)
		for _, f := range j.On {
			join.AddField(f.From, f.To)
		}
	}
	return src, nil
}

// Query renders the SELECT statement of the document. An empty dialect
// falls back to the document dialect. Columns are written as "table.column"
// or as a bare column; no columns selects all of them.
func (d *Document) Query(dialectName string) (string, []any, error) {
	if dialectName == "" {
		dialectName = d.Dialect
	}
	if dialectName == "" {
		return "", nil, fmt.Errorf("querydef: no dialect for %q", d.Name)
	}
	src, err := d.Build()
	if err != nil {
		return "", nil, err
	}
	f, err := sql.FormatterFor(dialectName)
	if err != nil {
		return "", nil, err
	}
	b := sql.Dialect(dialectName)
	columns := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		if table, field, ok := strings.Cut(c, "."); ok {
			columns[i] = b.C(table, field)
		} else {
			columns[i] = f.DelimitField(c)
		}
	}
	return b.Select(columns...).From(sql.NewSourceDB(src)).Query()
}

// FromSource maps a join tree back to a document.
func FromSource(name string, src *joinsql.Source, columns ...string) *Document {
	return &Document{
		Name:    name,
		Source:  fromSource(src),
		Columns: columns,
	}
}

func fromSource(s *joinsql.Source) *Source {
	out := &Source{Name: s.Name}
	if s.EntityName != s.Name {
		out.Entity = s.EntityName
	}
	for _, j := range s.Joins().All() {
		join := &Join{To: fromSource(j.ToSource)}
		if j.Type == joinsql.LeftJoin {
			join.Type = "left"
		}
		for _, f := range j.Fields {
			join.On = append(join.On, &Field{From: f.FromField, To: f.ToField})
		}
		out.Joins = append(out.Joins, join)
	}
	return out
}
