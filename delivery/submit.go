package delivery

import (
	"context"
	"time"

	"github.com/sudokatie/whisper/cryptokernel"
	"github.com/sudokatie/whisper/identity"
	"github.com/sudokatie/whisper/internal/logger"
	"github.com/sudokatie/whisper/internal/metrics"
	"github.com/sudokatie/whisper/internal/werrors"
	"github.com/sudokatie/whisper/store"
)

type submitRequest struct {
	destination store.Recipient
	plaintext   string
	result      chan submitResult
}

type submitResult struct {
	msgID string
	err   error
}

// Submit enqueues plaintext for destination and returns its msg_id
// once the engine loop has processed it (spec §4.5.1). Safe to call
// from any goroutine; the actual work runs on the Engine's Run loop.
func (e *Engine) Submit(ctx context.Context, destination store.Recipient, plaintext string) (string, error) {
	req := submitRequest{destination: destination, plaintext: plaintext, result: make(chan submitResult, 1)}
	select {
	case e.submitCh <- req:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	select {
	case res := <-req.result:
		return res.msgID, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// submit implements spec §4.5.1 and must only be called from Run's
// goroutine.
func (e *Engine) submit(ctx context.Context, destination store.Recipient, plaintext string) (string, error) {
	if destination.IsDirect() {
		contact, err := e.st.GetContactByID(destination.Direct)
		if err == nil && contact.Trust == store.TrustBlocked {
			e.dropPeer(destination.Direct)
			return "", werrors.New(werrors.InvalidInput, "destination is blocked", nil)
		}
	}

	msgID := newMsgID()
	entry := store.MessageLogEntry{
		MsgID:     msgID,
		From:      e.selfNodeID,
		To:        destination,
		Content:   store.TextContent(plaintext),
		Timestamp: time.Now(),
		Status:    store.Pending,
	}
	if err := e.st.InsertMessage(entry); err != nil {
		return "", err
	}

	recipients, payloads, err := e.encryptForDestination(destination, []byte(plaintext))
	if err != nil {
		// Fall back to plaintext for every intended recipient; the
		// message is still delivered, never dropped (spec §4.5.1 step 3).
		e.log.Error("encryption failed, falling back to plaintext", logger.Error(err), logger.String("msg_id", msgID))
		recipients, payloads = e.fallbackPlaintext(destination, []byte(plaintext))
	}

	now := time.Now()
	for i, recipient := range recipients {
		pending := store.PendingOutbound{
			MsgID:           msgID,
			Destination:     recipient,
			OpaqueEncrypted: payloads[i],
			EnqueuedAt:      now,
			Attempts:        0,
		}
		if err := e.st.QueuePending(pending); err != nil {
			return "", err
		}

		if e.PeerState(recipient) == Online {
			if sendErr := e.tr.Send(ctx, recipient, payloads[i]); sendErr == nil {
				_ = e.st.RemovePending(msgID)
				_ = e.st.UpdateStatus(msgID, store.Sent, "")
				metrics.MessagesSent.WithLabelValues("sent").Inc()
			} else {
				_ = e.st.BumpAttempts(msgID)
				metrics.MessagesSent.WithLabelValues("failed").Inc()
			}
		}
	}

	return msgID, nil
}

// encryptForDestination resolves destination to its recipient(s) and
// encrypts plaintext for each (spec §4.5.1 step 2-3).
func (e *Engine) encryptForDestination(destination store.Recipient, plaintext []byte) ([]string, [][]byte, error) {
	if destination.IsGroup() {
		group, err := e.st.GetGroupByID(destination.Group)
		if err != nil {
			return nil, nil, err
		}
		sealed, err := cryptokernel.EncryptGroup(plaintext, group.SymmetricKey)
		if err != nil {
			return nil, nil, err
		}
		var recipients []string
		for _, member := range group.Members {
			if member == e.selfNodeID {
				continue
			}
			recipients = append(recipients, member)
		}
		payloads := make([][]byte, len(recipients))
		for i := range payloads {
			payloads[i] = sealed
		}
		return recipients, payloads, nil
	}

	contact, err := e.st.GetContactByID(destination.Direct)
	if err != nil {
		return nil, nil, err
	}
	if contact.PublicSigningKey == "" {
		// Bootstrap degrade path: no known key, send cleartext
		// (spec §9 open question 4 — a known, intentional gap).
		return []string{destination.Direct}, [][]byte{plaintext}, nil
	}

	pub, err := identity.ImportPublic(contact.PublicSigningKey)
	if err != nil {
		return nil, nil, err
	}
	encPub, err := identity.ConvertSigningPublicToEncryption(pub)
	if err != nil {
		return nil, nil, err
	}
	sealed, err := cryptokernel.SealDirect(plaintext, encPub)
	if err != nil {
		return nil, nil, err
	}
	return []string{destination.Direct}, [][]byte{sealed}, nil
}

// fallbackPlaintext expands destination to its recipient set using raw
// plaintext bytes, for the "encryption itself failed" recovery path.
func (e *Engine) fallbackPlaintext(destination store.Recipient, plaintext []byte) ([]string, [][]byte) {
	if destination.IsGroup() {
		group, err := e.st.GetGroupByID(destination.Group)
		if err != nil {
			return nil, nil
		}
		var recipients []string
		for _, member := range group.Members {
			if member != e.selfNodeID {
				recipients = append(recipients, member)
			}
		}
		payloads := make([][]byte, len(recipients))
		for i := range payloads {
			payloads[i] = plaintext
		}
		return recipients, payloads
	}
	return []string{destination.Direct}, [][]byte{plaintext}
}
