package user

import (
	"strconv"
	"strings"
)

// Field names a searchable column.
type Field string

// Searchable fields, in the order criteria are built.
const (
	FieldUsername    Field = "username"
	FieldEmail       Field = "email"
	FieldFirstName   Field = "first_name"
	FieldLastName    Field = "last_name"
	FieldPhoneNumber Field = "phone_number"
	FieldActive      Field = "active"
)

// Op is the comparison a Criterion applies.
type Op int

const (
	// OpContainsFold matches a case-insensitive substring.
	OpContainsFold Op = iota
	// OpContains matches a case-sensitive substring.
	OpContains
	// OpEquals matches a boolean exactly.
	OpEquals
)

func (o Op) String() string {
	switch o {
	case OpContainsFold:
		return "contains_fold"
	case OpContains:
		return "contains"
	case OpEquals:
		return "equals"
	default:
		return "op(" + strconv.Itoa(int(o)) + ")"
	}
}

// Criterion is one clause of a conjunctive search. Value holds a string for
// the substring ops and a bool for OpEquals.
type Criterion struct {
	Field Field
	Op    Op
	Value any
}

// Criteria is an ordered conjunction. An empty Criteria matches every record.
type Criteria []Criterion

// BuildCriteria narrows "match everything" by one clause per present filter
// field, always in the order username, email, first_name, last_name,
// phone_number, active.
func BuildCriteria(f SearchFilter) Criteria {
	c := Criteria{}
	c = c.andText(FieldUsername, OpContainsFold, f.Username)
	c = c.andText(FieldEmail, OpContainsFold, f.Email)
	c = c.andText(FieldFirstName, OpContainsFold, f.FirstName)
	c = c.andText(FieldLastName, OpContainsFold, f.LastName)
	c = c.andText(FieldPhoneNumber, OpContains, f.PhoneNumber)
	if f.Active != nil {
		c = append(c, Criterion{Field: FieldActive, Op: OpEquals, Value: *f.Active})
	}
	return c
}

func (c Criteria) andText(field Field, op Op, value string) Criteria {
	if strings.TrimSpace(value) == "" {
		return c
	}
	return append(c, Criterion{Field: field, Op: op, Value: value})
}

// Match reports whether e satisfies every clause.
func (c Criteria) Match(e *Entity) bool {
	for _, cr := range c {
		if !cr.Match(e) {
			return false
		}
	}
	return true
}

// Apply returns the records satisfying c, preserving input order.
func (c Criteria) Apply(entities []Entity) []Entity {
	out := make([]Entity, 0, len(entities))
	for i := range entities {
		if c.Match(&entities[i]) {
			out = append(out, entities[i])
		}
	}
	return out
}

// Match evaluates a single clause against e.
func (cr Criterion) Match(e *Entity) bool {
	switch cr.Op {
	case OpEquals:
		want, ok := cr.Value.(bool)
		if !ok || cr.Field != FieldActive {
			return false
		}
		return e.Active == want
	case OpContainsFold:
		needle, _ := cr.Value.(string)
		return strings.Contains(strings.ToLower(textField(e, cr.Field)), strings.ToLower(needle))
	case OpContains:
		needle, _ := cr.Value.(string)
		return strings.Contains(textField(e, cr.Field), needle)
	default:
		return false
	}
}

func textField(e *Entity, f Field) string {
	switch f {
	case FieldUsername:
		return e.Username
	case FieldEmail:
		return e.Email
	case FieldFirstName:
		return e.FirstName
	case FieldLastName:
		return e.LastName
	case FieldPhoneNumber:
		return e.PhoneNumber
	default:
		return ""
	}
}
