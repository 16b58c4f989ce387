package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudokatie/whisper/cryptokernel"
	"github.com/sudokatie/whisper/identity"
	"github.com/sudokatie/whisper/store"
	"github.com/sudokatie/whisper/transport"
	"github.com/sudokatie/whisper/wire"
)

func newTestEngine(t *testing.T) (*Engine, *store.Store, *transport.Mock, *identity.KeyPair) {
	t.Helper()
	kp, err := identity.Generate()
	require.NoError(t, err)
	enc, err := identity.DeriveEncryptionKeys(kp)
	require.NoError(t, err)

	st, err := store.Open(t.TempDir(), "engine-test-passphrase")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	tr := transport.NewMock()
	e := New(st, tr, kp, enc, nil)
	return e, st, tr, kp
}

func runEngine(t *testing.T, e *Engine) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go e.Run(ctx)
	return cancel
}

func TestSubmitToOfflinePeerQueuesAndFlushesOnConnect(t *testing.T) {
	e, st, tr, _ := newTestEngine(t)
	cancel := runEngine(t, e)
	defer cancel()

	peerKP, err := identity.Generate()
	require.NoError(t, err)
	require.NoError(t, st.UpsertContact(store.Contact{
		NodeID:           peerKP.NodeID(),
		Alias:            "bob",
		PublicSigningKey: peerKP.ExportPublic(),
		Trust:            store.TrustUnknown,
	}))

	msgID, err := e.Submit(context.Background(), store.DirectTo(peerKP.NodeID()), "hi")
	require.NoError(t, err)
	assert.NotEmpty(t, msgID)

	pending, err := st.PendingFor(peerKP.NodeID())
	require.NoError(t, err)
	require.Len(t, pending, 1)

	tr.Emit(transport.Event{Kind: transport.Connected, Peer: peerKP.NodeID()})

	require.Eventually(t, func() bool {
		remaining, err := st.PendingFor(peerKP.NodeID())
		return err == nil && len(remaining) == 0
	}, time.Second, 5*time.Millisecond)

	sent := tr.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, peerKP.NodeID(), sent[0].Peer)
}

func TestSubmitOrderPreservedOnFlush(t *testing.T) {
	e, st, tr, _ := newTestEngine(t)
	cancel := runEngine(t, e)
	defer cancel()

	peerKP, err := identity.Generate()
	require.NoError(t, err)
	require.NoError(t, st.UpsertContact(store.Contact{
		NodeID: peerKP.NodeID(), Alias: "bob", PublicSigningKey: peerKP.ExportPublic(),
	}))

	for _, text := range []string{"m1", "m2", "m3"} {
		_, err := e.Submit(context.Background(), store.DirectTo(peerKP.NodeID()), text)
		require.NoError(t, err)
	}

	tr.Emit(transport.Event{Kind: transport.Connected, Peer: peerKP.NodeID()})

	require.Eventually(t, func() bool {
		return len(tr.SentMessages()) == 3
	}, time.Second, 5*time.Millisecond)

	sent := tr.SentMessages()
	peerEnc, err := identity.DeriveEncryptionKeys(peerKP)
	require.NoError(t, err)
	var decoded []string
	for _, s := range sent {
		plain, err := cryptokernel.OpenDirect(s.Data, peerEnc.Private)
		require.NoError(t, err)
		decoded = append(decoded, string(plain))
	}
	assert.Equal(t, []string{"m1", "m2", "m3"}, decoded)
}

func TestInboundTextLogsAndRepliesWithReceipt(t *testing.T) {
	e, st, tr, _ := newTestEngine(t)
	cancel := runEngine(t, e)
	defer cancel()

	senderID := "sender-node"
	// The receipt goes through the pending queue and reaches the
	// transport right away only for a peer the engine has seen connect.
	tr.Emit(transport.Event{Kind: transport.Connected, Peer: senderID})
	tr.Emit(transport.Event{Kind: transport.Received, Peer: senderID, Data: []byte("hello there")})

	require.Eventually(t, func() bool {
		msgs, err := st.MessagesBetween(senderID, 0)
		return err == nil && len(msgs) == 1 && len(tr.SentMessages()) == 1
	}, time.Second, 5*time.Millisecond)

	sent := tr.SentMessages()
	require.Len(t, sent, 1)
	frame := wire.Classify(sent[0].Data)
	assert.True(t, frame.IsReceipt())
	assert.Equal(t, wire.Delivered, frame.ReceiptKind)
}

func TestInboundReceiptUpdatesStatusAndIsNotLogged(t *testing.T) {
	e, st, tr, _ := newTestEngine(t)
	cancel := runEngine(t, e)
	defer cancel()

	require.NoError(t, st.InsertMessage(store.MessageLogEntry{
		MsgID: "11111111-1111-1111-1111-111111111111", From: "me",
		To: store.DirectTo("peer"), Content: store.TextContent("x"),
		Timestamp: time.Now(), Status: store.Sent,
	}))

	receipt := wire.Emit(wire.NewReceiptFrame("11111111-1111-1111-1111-111111111111", wire.Delivered))
	tr.Emit(transport.Event{Kind: transport.Received, Peer: "peer", Data: receipt})

	require.Eventually(t, func() bool {
		m, err := st.GetMessage("11111111-1111-1111-1111-111111111111")
		return err == nil && m.Status == store.Delivered
	}, time.Second, 5*time.Millisecond)

	msgs, err := st.MessagesBetween("peer", 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 1) // only the original entry, receipt itself not logged
}

func TestBlockedPeerInboundIsDroppedSilently(t *testing.T) {
	e, st, tr, _ := newTestEngine(t)
	cancel := runEngine(t, e)
	defer cancel()

	require.NoError(t, st.UpsertContact(store.Contact{NodeID: "bad-peer", Alias: "bad", Trust: store.TrustBlocked}))
	tr.Emit(transport.Event{Kind: transport.Received, Peer: "bad-peer", Data: []byte("spam")})

	time.Sleep(20 * time.Millisecond)
	msgs, err := st.MessagesBetween("bad-peer", 0)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSubmitToBlockedPeerIsRejected(t *testing.T) {
	e, st, _, _ := newTestEngine(t)
	cancel := runEngine(t, e)
	defer cancel()

	require.NoError(t, st.UpsertContact(store.Contact{NodeID: "bad-peer", Alias: "bad", Trust: store.TrustBlocked}))

	_, err := e.Submit(context.Background(), store.DirectTo("bad-peer"), "hi")
	assert.Error(t, err)
}

func TestGroupInviteThenGroupMessageRoundtrips(t *testing.T) {
	e, st, tr, _ := newTestEngine(t)
	cancel := runEngine(t, e)
	defer cancel()

	groupKey, err := cryptokernel.GenerateGroupKey()
	require.NoError(t, err)

	sealedKey, err := cryptokernel.SealGroupKey(groupKey, e.enc.Public)
	require.NoError(t, err)

	invite := wire.Emit(wire.NewInviteFrame("friends", "22222222-2222-2222-2222-222222222222", sealedKey))
	tr.Emit(transport.Event{Kind: transport.Received, Peer: "alice-node", Data: invite})

	require.Eventually(t, func() bool {
		_, err := st.GetGroupByID("22222222-2222-2222-2222-222222222222")
		return err == nil
	}, time.Second, 5*time.Millisecond)

	g, err := st.GetGroupByID("22222222-2222-2222-2222-222222222222")
	require.NoError(t, err)
	assert.Equal(t, groupKey, g.SymmetricKey)
	assert.Contains(t, g.Members, "alice-node")

	groupMsg, err := cryptokernel.EncryptGroup([]byte("group hello"), groupKey)
	require.NoError(t, err)
	tr.Emit(transport.Event{Kind: transport.Received, Peer: "alice-node", Data: groupMsg})

	require.Eventually(t, func() bool {
		msgs, err := st.MessagesBetween("alice-node", 0)
		return err == nil && len(msgs) >= 1
	}, time.Second, 5*time.Millisecond)
}
