package joinsql

import (
	"strconv"
	"strings"
)

// Source is a named reference to a queryable entity (table or view) together
// with the joins that lead out of it. A query's sources form a tree rooted at
// its primary source.
type Source struct {
	// Name is the logical alias of the source within a query.
	Name string
	// EntityName is the physical table or view name.
	EntityName string

	joins *JoinList
}

// NewSource returns a new Source. An empty entityName defaults to name.
func NewSource(name, entityName string) *Source {
	if entityName == "" {
		entityName = name
	}
	s := &Source{Name: name, EntityName: entityName}
	s.joins = &JoinList{from: s}
	return s
}

// FromString builds a chain of sources from a dot separated path. For example,
// "order.customer.address" returns the "order" source joined to "customer",
// which in turn is joined to "address". It returns nil for an empty path.
func FromString(path string) *Source {
	var root, last *Source
	for _, part := range strings.Split(path, ".") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		s := NewSource(part, part)
		if root == nil {
			root = s
		} else {
			last.Joins().AddNewJoinTo(s)
		}
		last = s
	}
	return root
}

// Joins returns the list of joins owned by the source.
func (s *Source) Joins() *JoinList {
	if s.joins == nil {
		s.joins = &JoinList{from: s}
	}
	return s.joins
}

// ChildSource returns the target of the first join, or nil if s has no joins.
func (s *Source) ChildSource() *Source {
	if s == nil || s.Joins().Len() == 0 {
		return nil
	}
	return s.joins.At(0).ToSource
}

// ChildSourceLeaf follows ChildSource down to the deepest source of the chain.
func (s *Source) ChildSourceLeaf() *Source {
	leaf := s
	for child := s.ChildSource(); child != nil; child = child.ChildSource() {
		leaf = child
	}
	return leaf
}

// MergeWith merges the join tree of other into s. See JoinList.MergeWith.
func (s *Source) MergeWith(other *Source) error {
	if other == nil {
		return nil
	}
	return s.Joins().MergeWith(other.Joins())
}

// Clone returns a deep copy of the source tree. Targets that are shared between
// branches of s are copied once per reference.
func (s *Source) Clone() *Source {
	if s == nil {
		return nil
	}
	c := NewSource(s.Name, s.EntityName)
	for _, j := range s.Joins().joins {
		nj := &Join{FromSource: c, ToSource: j.ToSource.Clone(), Type: j.Type}
		for _, f := range j.Fields {
			nj.AddField(f.FromField, f.ToField)
		}
		c.joins.joins = append(c.joins.joins, nj)
	}
	return c
}

// Key returns a canonical representation of the source tree, including join
// types and join fields. Two trees that render to the same SQL share a key.
func (s *Source) Key() string {
	var b strings.Builder
	s.writeKey(&b)
	return b.String()
}

func (s *Source) writeKey(b *strings.Builder) {
	writeKeyPart(b, s.Name)
	writeKeyPart(b, s.EntityName)
	if s.Joins().Len() == 0 {
		return
	}
	b.WriteByte('(')
	for i, j := range s.joins.joins {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(j.Type.String())
		b.WriteByte('[')
		for _, f := range j.Fields {
			writeKeyPart(b, f.FromField)
			writeKeyPart(b, f.ToField)
		}
		b.WriteByte(']')
		j.ToSource.writeKey(b)
	}
	b.WriteByte(')')
}

// writeKeyPart writes v prefixed by its length, so that names holding the
// separators of the key cannot collide.
func writeKeyPart(b *strings.Builder, v string) {
	b.WriteString(strconv.Itoa(len(v)))
	b.WriteByte(':')
	b.WriteString(v)
}

// String returns the name of the source followed by the names along its
// ChildSource chain, separated by dots.
func (s *Source) String() string {
	if s == nil {
		return ""
	}
	names := []string{s.Name}
	for child := s.ChildSource(); child != nil; child = child.ChildSource() {
		names = append(names, child.Name)
	}
	return strings.Join(names, ".")
}

// sameTarget reports whether s and other identify the same join target.
func (s *Source) sameTarget(other *Source) bool {
	return s.Name == other.Name && s.EntityName == other.EntityName
}
