// Package wire implements whisper's Wire Codec (spec §4.4): a pure,
// total classifier from raw bytes to one of Receipt, Invite, or Text,
// and the matching emission functions.
package wire

import "github.com/google/uuid"

// ReceiptKind distinguishes a delivery receipt from a read receipt.
type ReceiptKind byte

const (
	Delivered ReceiptKind = 'D'
	Read      ReceiptKind = 'R'
)

// Frame is the sum type a wire buffer classifies to (spec §4.4).
type Frame struct {
	kind frameKind

	// Receipt fields.
	ReceiptTargetID string
	ReceiptKind     ReceiptKind

	// Invite fields.
	InviteName          string
	InviteGroupID       string
	InviteEncryptedKey  []byte

	// Text field.
	Text string
}

type frameKind int

const (
	kindText frameKind = iota
	kindReceipt
	kindInvite
)

func (f Frame) IsReceipt() bool { return f.kind == kindReceipt }
func (f Frame) IsInvite() bool  { return f.kind == kindInvite }
func (f Frame) IsText() bool    { return f.kind == kindText }

// NewReceiptFrame builds a Receipt frame value.
func NewReceiptFrame(targetID string, kind ReceiptKind) Frame {
	return Frame{kind: kindReceipt, ReceiptTargetID: targetID, ReceiptKind: kind}
}

// NewInviteFrame builds an Invite frame value.
func NewInviteFrame(name, groupID string, encryptedKey []byte) Frame {
	return Frame{kind: kindInvite, InviteName: name, InviteGroupID: groupID, InviteEncryptedKey: encryptedKey}
}

// NewTextFrame builds a Text frame value.
func NewTextFrame(text string) Frame {
	return Frame{kind: kindText, Text: text}
}

// isValidUUID reports whether s parses as a hyphenated UUID of exactly 36 characters.
func isValidUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
