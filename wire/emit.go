package wire

import "fmt"

// Emit renders a Frame back to its exact wire bytes (spec §4.4).
func Emit(f Frame) []byte {
	switch f.kind {
	case kindReceipt:
		return []byte(fmt.Sprintf("%s%c:%s", receiptPrefix, byte(f.ReceiptKind), f.ReceiptTargetID))
	case kindInvite:
		out := []byte(fmt.Sprintf("%s%s:%s:", invitePrefix, f.InviteName, f.InviteGroupID))
		return append(out, f.InviteEncryptedKey...)
	default:
		return []byte(f.Text)
	}
}
