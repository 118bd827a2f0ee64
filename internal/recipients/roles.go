package recipients

import (
	"encoding/json"
	"slices"
)

// Role determines what action a recipient performs on a document.
type Role string

// Valid recipient roles.
const (
	RoleSigner   Role = "SIGNER"
	RoleApprover Role = "APPROVER"
	RoleViewer   Role = "VIEWER"
	RoleCC       Role = "CC"
)

var roles = []Role{
	RoleSigner,
	RoleApprover,
	RoleViewer,
	RoleCC,
}

// Roles returns the list of valid recipient roles.
func Roles() []Role {
	return roles
}

// ParseRole validates a string as a known role.
func ParseRole(s string) (Role, error) {
	v := Role(s)
	if !slices.Contains(roles, v) {
		return "", ErrInvalidRole
	}
	return v, nil
}

// UnmarshalJSON validates that the decoded string is a known role.
func (r *Role) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseRole(raw)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// CountsTowardCompletion reports whether the role gates document
// completion. CC recipients never reach Signed and are excluded.
func (r Role) CountsTowardCompletion() bool {
	return r != RoleCC
}

// RequiresFieldInsertion reports whether recipient completion demands
// every owned field be inserted first. Viewers and CC recipients never
// insert values, so fields assigned to them do not block completion.
func (r Role) RequiresFieldInsertion() bool {
	return r == RoleSigner || r == RoleApprover
}

// CompletionAction names the role-specific completion recorded in the
// audit ledger.
func (r Role) CompletionAction() string {
	switch r {
	case RoleApprover:
		return "APPROVED"
	case RoleViewer:
		return "VIEWED"
	case RoleCC:
		return "CC"
	default:
		return "SIGNED"
	}
}

// SigningReason is the reason line printed on the certificate page.
func (r Role) SigningReason() string {
	switch r {
	case RoleApprover:
		return "I am an approver of this document"
	case RoleViewer:
		return "I am a viewer of this document"
	case RoleCC:
		return "I am required to receive a copy of this document"
	default:
		return "I am a signer of this document"
	}
}
