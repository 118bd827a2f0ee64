package signing

import (
	"github.com/quill-sign/quill/internal/documents"
	"github.com/quill-sign/quill/internal/fields"
	"github.com/quill-sign/quill/internal/recipients"
)

// The guard rules below are pure: they inspect already-loaded state and
// return the sentinel describing the first violated precondition. The
// state machine evaluates them under the document row lock.

// CanSignField guards value insertion into a field.
func CanSignField(status documents.Status, rec recipients.Recipient, f fields.Field) error {
	if status != documents.Pending {
		return ErrNotPending
	}
	if !rec.Role.RequiresFieldInsertion() {
		return ErrRoleCannotSign
	}
	if rec.SigningStatus == recipients.Signed {
		return recipients.ErrAlreadySigned
	}
	if f.RecipientID != rec.ID {
		return ErrFieldNotOwned
	}
	if f.Inserted {
		return fields.ErrAlreadyInserted
	}
	return nil
}

// CanUnsignField guards reverting a field to its unsigned state.
func CanUnsignField(status documents.Status, rec recipients.Recipient, f fields.Field) error {
	if status != documents.Pending {
		return ErrNotPending
	}
	if rec.SigningStatus == recipients.Signed {
		return recipients.ErrAlreadySigned
	}
	if f.RecipientID != rec.ID {
		return ErrFieldNotOwned
	}
	if !f.Inserted {
		return fields.ErrNotInserted
	}
	return nil
}

// CanCompleteRecipient guards the recipient's one-shot completion.
// Signer and approver completion demands every owned field inserted;
// viewers complete by viewing alone; CC recipients have no completion
// action.
func CanCompleteRecipient(status documents.Status, rec recipients.Recipient, owned []fields.Field) error {
	if status != documents.Pending {
		return ErrNotPending
	}
	if rec.Role == recipients.RoleCC {
		return ErrRoleCannotFinish
	}
	if rec.SigningStatus == recipients.Signed {
		return recipients.ErrAlreadySigned
	}
	if rec.Role.RequiresFieldInsertion() {
		for _, f := range owned {
			if !f.Inserted {
				return recipients.ErrFieldsPending
			}
		}
	}
	return nil
}

// CanSend guards the DRAFT → PENDING transition.
func CanSend(status documents.Status, recipientCount int) error {
	if status == documents.Completed {
		return documents.ErrCompleted
	}
	if status != documents.Draft {
		return ErrNotDraft
	}
	if recipientCount == 0 {
		return ErrNoRecipients
	}
	return nil
}

// CanComplete guards the PENDING → COMPLETED transition: every
// recipient whose role gates completion must have signed.
func CanComplete(status documents.Status, recs []recipients.Recipient) error {
	if status == documents.Completed {
		return documents.ErrCompleted
	}
	if status != documents.Pending {
		return ErrNotPending
	}
	for _, rec := range recs {
		if rec.Role.CountsTowardCompletion() && rec.SigningStatus != recipients.Signed {
			return ErrRecipientsPending
		}
	}
	return nil
}

// AllCompleted reports whether every completion-gating recipient has
// signed, which is what triggers automatic document completion after
// the last recipient finishes.
func AllCompleted(recs []recipients.Recipient) bool {
	for _, rec := range recs {
		if rec.Role.CountsTowardCompletion() && rec.SigningStatus != recipients.Signed {
			return false
		}
	}
	return true
}
