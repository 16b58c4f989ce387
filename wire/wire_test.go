package wire

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestClassifyDeliveredReceipt(t *testing.T) {
	id := "123e4567-e89b-12d3-a456-426614174000"
	buf := []byte("RCPT:D:" + id)

	f := Classify(buf)
	assert.True(t, f.IsReceipt())
	assert.Equal(t, id, f.ReceiptTargetID)
	assert.Equal(t, Delivered, f.ReceiptKind)
}

func TestClassifyReadReceipt(t *testing.T) {
	id := "123e4567-e89b-12d3-a456-426614174000"
	buf := []byte("RCPT:R:" + id)

	f := Classify(buf)
	assert.True(t, f.IsReceipt())
	assert.Equal(t, Read, f.ReceiptKind)
}

func TestClassifyInvalidDiscriminantFallsThroughToText(t *testing.T) {
	buf := []byte("RCPT:X:123e4567-e89b-12d3-a456-426614174000")
	f := Classify(buf)
	assert.True(t, f.IsText())
	assert.Equal(t, string(buf), f.Text)
}

func TestClassifyInvalidUUIDFallsThroughToText(t *testing.T) {
	buf := []byte("RCPT:D:not-a-valid-uuid-at-all-000000000000")
	f := Classify(buf)
	assert.True(t, f.IsText())
}

func TestClassifyShortBufferIsText(t *testing.T) {
	f := Classify([]byte("RCPT:D:short"))
	assert.True(t, f.IsText())
}

func TestClassifyGroupInvite(t *testing.T) {
	groupID := uuid.NewString()
	cipher := []byte{0x01, 0x02, 0x03, ':', 0xFF}
	buf := append([]byte("GROUP_INVITE:my-group:"+groupID+":"), cipher...)

	f := Classify(buf)
	if !assert.True(t, f.IsInvite()) {
		return
	}
	assert.Equal(t, "my-group", f.InviteName)
	assert.Equal(t, groupID, f.InviteGroupID)
	assert.Equal(t, cipher, f.InviteEncryptedKey)
}

func TestClassifyPlainTextFallsThrough(t *testing.T) {
	f := Classify([]byte("hello there"))
	assert.True(t, f.IsText())
	assert.Equal(t, "hello there", f.Text)
}

func TestClassifyEmptyBufferIsText(t *testing.T) {
	f := Classify([]byte{})
	assert.True(t, f.IsText())
	assert.Equal(t, "", f.Text)
}

func TestEmitThenClassifyRoundtripsReceipt(t *testing.T) {
	id := uuid.NewString()
	frame := NewReceiptFrame(id, Read)
	out := Emit(frame)

	reclassified := Classify(out)
	assert.True(t, reclassified.IsReceipt())
	assert.Equal(t, id, reclassified.ReceiptTargetID)
	assert.Equal(t, Read, reclassified.ReceiptKind)
}

func TestEmitThenClassifyRoundtripsInvite(t *testing.T) {
	groupID := uuid.NewString()
	frame := NewInviteFrame("friends", groupID, []byte{0xAA, 0xBB, 0xCC})
	out := Emit(frame)

	reclassified := Classify(out)
	assert.True(t, reclassified.IsInvite())
	assert.Equal(t, "friends", reclassified.InviteName)
	assert.Equal(t, groupID, reclassified.InviteGroupID)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, reclassified.InviteEncryptedKey)
}

func TestEmitThenClassifyRoundtripsText(t *testing.T) {
	frame := NewTextFrame("plain message")
	out := Emit(frame)

	reclassified := Classify(out)
	assert.True(t, reclassified.IsText())
	assert.Equal(t, "plain message", reclassified.Text)
}
