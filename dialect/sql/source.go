package sql

import (
	"strings"

	"github.com/syssam/joinsql"
)

// SourceDB renders the join tree of a source as the body of a FROM clause.
// Name, EntityName and Joins are forwarded to the wrapped source.
type SourceDB struct {
	*joinsql.Source
}

// NewSourceDB wraps the given source.
func NewSourceDB(s *joinsql.Source) *SourceDB {
	return &SourceDB{Source: s}
}

// CreateSQL renders the join tree without delimiting identifiers.
func (s *SourceDB) CreateSQL() (string, error) {
	return s.CreateSQLWith(IdentityFormatter{})
}

// CreateSQLWith renders the join tree, delimiting identifiers with f.
// Joins are emitted depth first in insertion order, each nested join directly
// after the ON clause of its parent:
//
//	`car` JOIN `engine` ON `car`.`engine_id` = `engine`.`id` JOIN `part` ON ...
func (s *SourceDB) CreateSQLWith(f Formatter) (string, error) {
	var b strings.Builder
	b.WriteString(f.DelimitTable(s.EntityName))
	if err := writeJoins(&b, s.Source, f); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeJoins(b *strings.Builder, from *joinsql.Source, f Formatter) error {
	for _, j := range from.Joins().All() {
		if len(j.Fields) == 0 {
			return joinsql.NewUnjoinedSourceError(from.Name, j.ToSource.Name)
		}
		var (
			fromTable = f.DelimitTable(from.EntityName)
			toTable   = f.DelimitTable(j.ToSource.EntityName)
		)
		b.WriteByte(' ')
		b.WriteString(j.Type.String())
		b.WriteByte(' ')
		b.WriteString(toTable)
		for i, jf := range j.Fields {
			if i == 0 {
				b.WriteString(" ON ")
			} else {
				b.WriteString(" AND ")
			}
			b.WriteString(fromTable)
			b.WriteByte('.')
			b.WriteString(f.DelimitField(jf.FromField))
			b.WriteString(" = ")
			b.WriteString(toTable)
			b.WriteByte('.')
			b.WriteString(f.DelimitField(jf.ToField))
		}
		if err := writeJoins(b, j.ToSource, f); err != nil {
			return err
		}
	}
	return nil
}
