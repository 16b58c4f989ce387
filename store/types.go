// Package store implements whisper's Encrypted Store (spec §4.3): a
// bbolt-backed embedded key-value store, encrypted at rest with a key
// derived from the user's passphrase and a per-vault salt file.
package store

import "time"

// TrustLevel is a per-contact moderation tag (spec §3, glossary).
type TrustLevel string

const (
	TrustUnknown  TrustLevel = "Unknown"
	TrustVerified TrustLevel = "Verified"
	TrustTrusted  TrustLevel = "Trusted"
	TrustBlocked  TrustLevel = "Blocked"
)

// Contact is a known or provisional peer (spec §3).
type Contact struct {
	NodeID         string     `json:"node_id"`
	Alias          string     `json:"alias"`
	PublicSigningKey string   `json:"public_signing_key,omitempty"`
	Trust          TrustLevel `json:"trust"`
	LastContacted  *time.Time `json:"last_contacted,omitempty"`
}

// Group is a named set of members sharing a symmetric key (spec §3).
type Group struct {
	GroupID      string    `json:"group_id"`
	Name         string    `json:"name"`
	Members      []string  `json:"members"`
	SymmetricKey []byte    `json:"symmetric_key"`
	CreatedAt    time.Time `json:"created_at"`
}

// Recipient is the destination of a MessageLogEntry (spec §3).
type Recipient struct {
	Direct string `json:"direct,omitempty"`
	Group  string `json:"group,omitempty"`
}

// DirectTo builds a direct-message Recipient.
func DirectTo(nodeID string) Recipient { return Recipient{Direct: nodeID} }

// GroupTo builds a group-message Recipient.
func GroupTo(groupID string) Recipient { return Recipient{Group: groupID} }

// IsDirect reports whether r targets a single peer.
func (r Recipient) IsDirect() bool { return r.Direct != "" }

// IsGroup reports whether r targets a group.
func (r Recipient) IsGroup() bool { return r.Group != "" }

// ReceiptKind distinguishes delivered from read (spec §3).
type ReceiptKind string

const (
	ReceiptDelivered ReceiptKind = "Delivered"
	ReceiptRead      ReceiptKind = "Read"
)

// Content is either free text or a receipt referencing another message.
type Content struct {
	Text          string      `json:"text,omitempty"`
	ReceiptTarget string      `json:"receipt_target,omitempty"`
	ReceiptKind   ReceiptKind `json:"receipt_kind,omitempty"`
}

// TextContent builds a text Content value.
func TextContent(text string) Content { return Content{Text: text} }

// ReceiptContent builds a receipt Content value.
func ReceiptContent(targetID string, kind ReceiptKind) Content {
	return Content{ReceiptTarget: targetID, ReceiptKind: kind}
}

// IsText reports whether c carries free text rather than a receipt.
func (c Content) IsText() bool { return c.ReceiptTarget == "" }

// Status is a MessageLogEntry's delivery status. Values are ordered
// Pending < Sent < Delivered < Read; Failed is terminal-but-retryable
// (spec §3).
type Status int

const (
	Pending Status = iota
	Sent
	Delivered
	Read
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Sent:
		return "Sent"
	case Delivered:
		return "Delivered"
	case Read:
		return "Read"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// rank returns the monotonicity rank used by UpdateStatus; Failed is
// terminal-but-retryable so it is not ordered relative to the others —
// any transition into or out of Failed is always allowed.
func (s Status) rank() int {
	switch s {
	case Pending:
		return 0
	case Sent:
		return 1
	case Delivered:
		return 2
	case Read:
		return 3
	default:
		return -1
	}
}

// MessageLogEntry is a single message record (spec §3).
type MessageLogEntry struct {
	MsgID        string    `json:"msg_id"`
	From         string    `json:"from"`
	To           Recipient `json:"to"`
	Content      Content   `json:"content"`
	Timestamp    time.Time `json:"timestamp"`
	Status       Status    `json:"status"`
	FailedReason string    `json:"failed_reason,omitempty"`
}

// PendingOutbound is a durable, already-encrypted queue entry (spec §3).
type PendingOutbound struct {
	MsgID             string    `json:"msg_id"`
	Destination       string    `json:"destination"`
	OpaqueEncrypted   []byte    `json:"opaque_encrypted_payload"`
	EnqueuedAt        time.Time `json:"enqueued_at"`
	Attempts          int       `json:"attempts"`
}
