package delivery

import (
	"context"
	"time"

	"github.com/sudokatie/whisper/cryptokernel"
	"github.com/sudokatie/whisper/internal/logger"
	"github.com/sudokatie/whisper/internal/metrics"
	"github.com/sudokatie/whisper/store"
	"github.com/sudokatie/whisper/wire"
)

// handleReceived implements spec §4.5.3: decrypt via the try-chain
// (group keys, then identity key, then cleartext), classify the
// result, and act on it.
func (e *Engine) handleReceived(ctx context.Context, from string, data []byte) {
	if contact, err := e.st.GetContactByID(from); err == nil && contact.Trust == store.TrustBlocked {
		e.dropPeer(from)
		return
	}

	plaintext := e.decryptInbound(data)
	frame := wire.Classify(plaintext)

	switch {
	case frame.IsReceipt():
		metrics.MessagesReceived.WithLabelValues("receipt").Inc()
		e.handleReceiptFrame(frame)
	case frame.IsInvite():
		metrics.MessagesReceived.WithLabelValues("invite").Inc()
		e.handleInviteFrame(from, frame)
	default:
		metrics.MessagesReceived.WithLabelValues("text").Inc()
		e.handleTextFrame(ctx, from, frame.Text)
	}
}

// decryptInbound tries every known group key, then the identity
// encryption key, and finally falls back to treating data as cleartext.
func (e *Engine) decryptInbound(data []byte) []byte {
	groups, err := e.st.ListGroups()
	if err == nil {
		for _, g := range groups {
			if plain, err := cryptokernel.DecryptGroup(data, g.SymmetricKey); err == nil {
				return plain
			}
		}
	}

	if plain, err := cryptokernel.OpenDirect(data, e.enc.Private); err == nil {
		return plain
	}

	return data
}

// handleReceiptFrame applies an inbound delivery/read receipt.
// Receipts are terminal data: never displayed, never echoed.
func (e *Engine) handleReceiptFrame(frame wire.Frame) {
	var status store.Status
	switch frame.ReceiptKind {
	case wire.Delivered:
		status = store.Delivered
	case wire.Read:
		status = store.Read
	default:
		return
	}
	if err := e.st.UpdateStatus(frame.ReceiptTargetID, status, ""); err != nil {
		e.log.Debug("receipt for unknown message", logger.String("msg_id", frame.ReceiptTargetID))
	}
}

// handleInviteFrame decrypts an inbound group invite and, on success,
// creates or updates the group with the revealed key and membership.
func (e *Engine) handleInviteFrame(from string, frame wire.Frame) {
	key, err := cryptokernel.OpenGroupKey(frame.InviteEncryptedKey, e.enc.Private)
	if err != nil {
		e.log.Warn("group invite decryption failed", logger.String("group_id", frame.InviteGroupID), logger.Error(err))
		return
	}

	group, err := e.st.GetGroupByID(frame.InviteGroupID)
	if err != nil {
		group = &store.Group{
			GroupID:      frame.InviteGroupID,
			Name:         frame.InviteName,
			CreatedAt:    time.Now(),
			SymmetricKey: key,
			Members:      []string{e.selfNodeID, from},
		}
		if err := e.st.CreateGroup(*group); err != nil {
			e.log.Error("creating group from invite", logger.Error(err))
		}
		return
	}

	if err := e.st.SetGroupKey(group.GroupID, key); err != nil {
		e.log.Error("updating group key from invite", logger.Error(err))
	}
	if err := e.st.AddGroupMember(group.GroupID, from); err != nil {
		e.log.Error("adding inviter as group member", logger.Error(err))
	}
}

// handleTextFrame logs an inbound text message and replies with a
// Delivered receipt (spec §4.5.3 step 7).
func (e *Engine) handleTextFrame(ctx context.Context, from string, text string) {
	msgID := newMsgID()
	entry := store.MessageLogEntry{
		MsgID:     msgID,
		From:      from,
		To:        store.DirectTo(e.selfNodeID),
		Content:   store.TextContent(text),
		Timestamp: time.Now(),
		Status:    store.Delivered,
	}
	if err := e.st.InsertMessage(entry); err != nil {
		e.log.Error("logging inbound message", logger.Error(err))
		return
	}

	receipt := wire.Emit(wire.NewReceiptFrame(msgID, wire.Delivered))
	if err := e.queueFrame(ctx, from, receipt); err != nil {
		e.log.Warn("queuing delivery receipt failed", logger.String("peer", from), logger.Error(err))
	}
}
