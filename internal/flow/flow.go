// Package flow holds the wizard state machines driven by the bot: resource
// creation, field editing, confirmation-code deletes, bulk user creation and
// search. Nothing here performs I/O; handlers feed validated input in and
// read the resulting state out.
package flow

import "fmt"

// Kind tags the active wizard of a session
type Kind int

const (
	KindCreate Kind = iota + 1
	KindEdit
	KindDelete
	KindBulk
	KindSearch
)

func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindEdit:
		return "edit"
	case KindDelete:
		return "delete"
	case KindBulk:
		return "bulk"
	case KindSearch:
		return "search"
	default:
		return "unknown"
	}
}

// Flow is one of *CreateFlow, *EditFlow, *DeleteFlow, *BulkFlow, *SearchFlow.
type Flow interface {
	Kind() Kind
}

// Resource names a panel resource type
type Resource string

const (
	ResourceUser  Resource = "user"
	ResourceHost  Resource = "host"
	ResourceNode  Resource = "node"
	ResourceSquad Resource = "squad"
)

// ParseResource validates a resource name taken from callback data.
func ParseResource(s string) (Resource, error) {
	switch r := Resource(s); r {
	case ResourceUser, ResourceHost, ResourceNode, ResourceSquad:
		return r, nil
	}
	return "", fmt.Errorf("unknown resource %q", s)
}

// ValidationError is returned for input the current step cannot accept.
// The step does not advance; Hint is shown to the admin.
type ValidationError struct {
	Hint string
}

func (e *ValidationError) Error() string { return e.Hint }

func invalid(format string, args ...any) error {
	return &ValidationError{Hint: fmt.Sprintf(format, args...)}
}

// Value is one collected wizard field. Raw is what the admin typed, Parsed
// is the validated value.
type Value struct {
	Name   string
	Label  string
	Raw    string
	Parsed any
}

// SearchFlow waits for a free-text query
type SearchFlow struct {
	Resource  Resource
	LastQuery string
}

// NewSearch starts a search over r
func NewSearch(r Resource) *SearchFlow {
	return &SearchFlow{Resource: r}
}

func (f *SearchFlow) Kind() Kind { return KindSearch }
