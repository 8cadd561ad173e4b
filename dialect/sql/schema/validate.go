package schema

import (
	"fmt"
	"sort"
	"strings"

	"ariga.io/atlas/sql/schema"

	"github.com/syssam/joinsql/dialect/sql/sqlgraph"
)

// ValidationError describes a graph element that does not match the database.
type ValidationError struct {
	Table   string
	Column  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the results of graph validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	if len(r.Errors) > 0 {
		sb.WriteString("Errors:\n")
		for _, e := range r.Errors {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			sb.WriteString("\n")
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		for _, w := range r.Warnings {
			sb.WriteString("  - ")
			sb.WriteString(w.Error())
			sb.WriteString("\n")
		}
	}
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

func (r *ValidationResult) errorf(table, column, format string, args ...any) {
	r.Errors = append(r.Errors, &ValidationError{Table: table, Column: column, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warnf(table, column, format string, args ...any) {
	r.Warnings = append(r.Warnings, &ValidationError{Table: table, Column: column, Message: fmt.Sprintf(format, args...)})
}

// Validate checks that every table and column the graph renders into a join
// exists in the inspected schema. Missing tables and columns are errors;
// tables without a primary key are warnings.
func Validate(g *sqlgraph.Schema, s *schema.Schema) *ValidationResult {
	result := &ValidationResult{}
	tables := make(map[string]*schema.Table, len(s.Tables))
	for _, t := range s.Tables {
		tables[t.Name] = t
	}
	checkColumns := func(table string, cols []string, what string) {
		t, ok := tables[table]
		if !ok {
			result.errorf(table, "", "%s table does not exist", what)
			return
		}
		for _, c := range cols {
			if _, ok := t.Column(c); !ok {
				result.errorf(table, c, "%s column does not exist", what)
			}
		}
	}
	for _, n := range g.Nodes {
		table := n.TableName()
		t, ok := tables[table]
		if !ok {
			result.errorf(table, "", "table of node %q does not exist", n.Type)
			continue
		}
		if t.PrimaryKey == nil {
			result.warnf(table, "", "table has no primary key")
		}
		if _, ok := t.Column(n.IDColumn()); !ok {
			result.errorf(table, n.IDColumn(), "identifier column does not exist")
		}
		fields := make([]string, 0, len(n.Fields))
		for name, f := range n.Fields {
			if f.Column != "" {
				name = f.Column
			}
			fields = append(fields, name)
		}
		sort.Strings(fields)
		for _, c := range fields {
			if _, ok := t.Column(c); !ok {
				result.errorf(table, c, "field column does not exist")
			}
		}
		names := make([]string, 0, len(n.Edges))
		for name := range n.Edges {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			e := n.Edges[name]
			what := fmt.Sprintf("edge %q", name)
			switch spec := e.Spec; {
			case spec.Rel == sqlgraph.M2M:
				checkColumns(spec.Table, spec.Columns, what)
			case spec.Rel == sqlgraph.M2O, spec.Rel == sqlgraph.O2O && spec.Inverse:
				checkColumns(table, spec.Columns, what)
				checkColumns(e.To.TableName(), spec.RefColumns, what)
			default:
				checkColumns(e.To.TableName(), spec.Columns, what)
				checkColumns(table, spec.RefColumns, what)
			}
		}
	}
	return result
}
