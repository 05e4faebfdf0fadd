package flow

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	// CodeLength is the length of a delete confirmation code
	CodeLength   = 6
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// NewCode returns a fresh confirmation code drawn uniformly from
// [A-Za-z0-9] with crypto/rand.
func NewCode() (string, error) {
	alphabetSize := big.NewInt(int64(len(codeAlphabet)))
	var sb strings.Builder
	sb.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("generate confirmation code: %w", err)
		}
		sb.WriteByte(codeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// DeleteFlow is an armed confirmation challenge for deleting one resource.
// The code stays the same until the challenge is matched or cancelled.
type DeleteFlow struct {
	Resource Resource
	TargetID string
	// Label is the resource's display name, captured before deletion
	Label string
	// Details is the pre-rendered identifying block shown with the code
	Details string
	Code    string
}

// NewDelete arms a challenge for the given resource
func NewDelete(r Resource, targetID, label, details string) (*DeleteFlow, error) {
	code, err := NewCode()
	if err != nil {
		return nil, err
	}
	return &DeleteFlow{
		Resource: r,
		TargetID: targetID,
		Label:    label,
		Details:  details,
		Code:     code,
	}, nil
}

func (f *DeleteFlow) Kind() Kind { return KindDelete }

// Check reports whether input matches the code exactly. Surrounding
// whitespace is ignored; case is not.
func (f *DeleteFlow) Check(input string) bool {
	return strings.TrimSpace(input) == f.Code
}

// String keeps the code out of anything that formats the flow.
func (f *DeleteFlow) String() string {
	return fmt.Sprintf("delete(%s %s)", f.Resource, f.TargetID)
}
