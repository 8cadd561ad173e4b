package joinsql

import "slices"

// JoinList is the ordered collection of joins owned by a single source.
// At most one join exists per target (Name, EntityName) pair.
type JoinList struct {
	from  *Source
	joins []*Join
}

// NewJoinList returns an empty JoinList owned by from.
func NewJoinList(from *Source) (*JoinList, error) {
	if from == nil {
		return nil, NewArgumentNullError("fromSource")
	}
	return &JoinList{from: from}, nil
}

// FromSource returns the owner of the list.
func (l *JoinList) FromSource() *Source { return l.from }

// Len returns the number of joins in the list.
func (l *JoinList) Len() int { return len(l.joins) }

// At returns the i-th join.
func (l *JoinList) At(i int) *Join { return l.joins[i] }

// All returns a copy of the joins in insertion order.
func (l *JoinList) All() []*Join { return slices.Clone(l.joins) }

// AddNewJoinTo returns the join to the given target, creating it if the list
// does not contain a join to a source with the same Name and EntityName yet.
// A nil target is ignored and nil is returned.
func (l *JoinList) AddNewJoinTo(to *Source) *Join {
	j, _ := l.addNewJoinTo(to, InnerJoin)
	return j
}

// AddNewJoinToWithType is like AddNewJoinTo, but sets the join type of a newly
// created join. An existing join keeps its type.
func (l *JoinList) AddNewJoinToWithType(to *Source, typ JoinType) *Join {
	j, _ := l.addNewJoinTo(to, typ)
	return j
}

func (l *JoinList) addNewJoinTo(to *Source, typ JoinType) (*Join, bool) {
	if to == nil {
		return nil, false
	}
	if j := l.find(to); j != nil {
		return j, false
	}
	j := &Join{FromSource: l.from, ToSource: to, Type: typ}
	l.joins = append(l.joins, j)
	return j, true
}

func (l *JoinList) find(to *Source) *Join {
	for _, j := range l.joins {
		if j.ToSource.sameTarget(to) {
			return j
		}
	}
	return nil
}

// MergeWith merges other into l. Both lists must be owned by sources with the
// same Name. Joins of other whose target is already joined by l are reused and
// their subtrees merged recursively; the remaining joins are appended together
// with their fields, sharing the target source of other. A nil other is a
// no-op; an empty other is a no-op once its owner matches.
func (l *JoinList) MergeWith(other *JoinList) error {
	if other == nil {
		return nil
	}
	if l.from.Name != other.from.Name {
		return NewMergeError(other.from.Name, l.from.Name)
	}
	for _, oj := range other.joins {
		j, created := l.addNewJoinTo(oj.ToSource, oj.Type)
		if created {
			for _, f := range oj.Fields {
				j.AddField(f.FromField, f.ToField)
			}
		}
		if j.ToSource == oj.ToSource {
			continue
		}
		if err := j.ToSource.Joins().MergeWith(oj.ToSource.Joins()); err != nil {
			return err
		}
	}
	return nil
}
