package delivery

import (
	"context"

	"github.com/sudokatie/whisper/cryptokernel"
	"github.com/sudokatie/whisper/identity"
	"github.com/sudokatie/whisper/internal/werrors"
	"github.com/sudokatie/whisper/wire"
)

type inviteRequest struct {
	groupID  string
	toNodeID string
	result   chan error
}

// Invite seals groupID's symmetric key to toNodeID's known public key
// and queues it as a group invite frame, reusing the same pending-queue
// and flush-on-connect machinery as a regular message (spec §4.5.1,
// adapted for an invite payload instead of free text).
func (e *Engine) Invite(ctx context.Context, groupID, toNodeID string) error {
	req := inviteRequest{groupID: groupID, toNodeID: toNodeID, result: make(chan error, 1)}
	select {
	case e.inviteCh <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// invite must only be called from Run's goroutine.
func (e *Engine) invite(ctx context.Context, groupID, toNodeID string) error {
	group, err := e.st.GetGroupByID(groupID)
	if err != nil {
		return err
	}
	contact, err := e.st.GetContactByID(toNodeID)
	if err != nil {
		return err
	}
	if contact.PublicSigningKey == "" {
		return werrors.New(werrors.InvalidInput, "contact has no known public key to invite through", nil)
	}

	pub, err := identity.ImportPublic(contact.PublicSigningKey)
	if err != nil {
		return err
	}
	encPub, err := identity.ConvertSigningPublicToEncryption(pub)
	if err != nil {
		return err
	}
	sealedKey, err := cryptokernel.SealGroupKey(group.SymmetricKey, encPub)
	if err != nil {
		return err
	}
	frame := wire.Emit(wire.NewInviteFrame(group.Name, group.GroupID, sealedKey))
	return e.queueFrame(ctx, toNodeID, frame)
}
