package wire

import (
	"strings"
	"unicode/utf8"
)

const (
	receiptPrefix = "RCPT:"
	// receiptLen is the total bit-exact length of a receipt frame:
	// "RCPT:" (5) + kind (1) + ":" (1) + 36-char uuid = 43 bytes.
	receiptLen    = 43
	invitePrefix  = "GROUP_INVITE:"
)

// Classify implements the exact probe sequence of spec §4.4: Receipt,
// then Invite, then Text as the total fallback. Classification is pure
// and total — every byte string classifies to exactly one Frame.
// Malformed receipts (prefix matches but structure doesn't) fall
// through to Text, never to an error.
func Classify(data []byte) Frame {
	if f, ok := classifyReceipt(data); ok {
		return f
	}
	if f, ok := classifyInvite(data); ok {
		return f
	}
	return NewTextFrame(utf8Lossy(data))
}

func classifyReceipt(data []byte) (Frame, bool) {
	if len(data) < receiptLen {
		return Frame{}, false
	}
	if string(data[:len(receiptPrefix)]) != receiptPrefix {
		return Frame{}, false
	}
	kindByte := data[5]
	if kindByte != byte(Delivered) && kindByte != byte(Read) {
		return Frame{}, false
	}
	if data[6] != ':' {
		return Frame{}, false
	}
	// Exactly 43 bytes: extra trailing bytes disqualify the receipt
	// shape (it must be the *entire* frame), falling through to Text.
	if len(data) != receiptLen {
		return Frame{}, false
	}
	id := string(data[7:43])
	if !isValidUUID(id) {
		return Frame{}, false
	}
	return NewReceiptFrame(id, ReceiptKind(kindByte)), true
}

func classifyInvite(data []byte) (Frame, bool) {
	s := string(data)
	if !strings.HasPrefix(s, invitePrefix) {
		return Frame{}, false
	}
	rest := s[len(invitePrefix):]

	// name : group_uuid : ciphertext — exactly two more delimiters,
	// the first splits name, the second splits group id from the
	// (possibly colon-containing, since it's raw bytes) ciphertext tail.
	firstColon := strings.Index(rest, ":")
	if firstColon < 0 {
		return Frame{}, false
	}
	name := rest[:firstColon]
	afterName := rest[firstColon+1:]

	secondColon := strings.Index(afterName, ":")
	if secondColon < 0 {
		return Frame{}, false
	}
	groupID := afterName[:secondColon]
	cipherStr := afterName[secondColon+1:]

	if name == "" || !isValidUUID(groupID) {
		return Frame{}, false
	}

	return NewInviteFrame(name, groupID, []byte(cipherStr)), true
}

func utf8Lossy(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	var b strings.Builder
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		b.WriteRune(r)
		data = data[size:]
	}
	return b.String()
}
