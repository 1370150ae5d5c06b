package auth

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"time"

	"github.com/google/uuid"

	"github.com/zrax/moulars/internal/age"
	"github.com/zrax/moulars/internal/db"
	"github.com/zrax/moulars/internal/logctx"
	"github.com/zrax/moulars/internal/manifest"
	"github.com/zrax/moulars/internal/model"
	"github.com/zrax/moulars/internal/moulerr"
	"github.com/zrax/moulars/internal/proto"
	"github.com/zrax/moulars/internal/vault"
	"github.com/zrax/moulars/internal/wire"
)

var log = logctx.Logger("auth")

// Deps bundles the Auth channel's handlers' dependencies on the rest of
// the server (spec.md §4.D "Auth (10)"): account/score storage, the
// Vault, the Age instance manager, the manifest engine's secure file
// surface, and the two config knobs (RestrictLogins, GameServerIP) a
// handler needs but doesn't own.
type Deps struct {
	Backend        db.Backend
	Vault          *vault.Store
	Ages           *age.Manager
	Manifest       *manifest.Manager
	RestrictLogins bool
	GameServerIP   string
}

// Vault node field-slot convention used by this file's handlers (none
// of this is wire-visible outside the server; it only has to agree
// with itself).
//
//	Player node:   String_1 = player name, String_2 = avatar shape,
//	               Int32_1 = explorer flag, UUID_1 = owning account id.
//	AgeInfo node:  String_1 = age filename, String_2 = instance name,
//	               String_3 = user-facing name, Text_1 = description,
//	               UUID_1 = age instance id, UUID_2 = parent instance id,
//	               Uint32_1 = sequence number, Int32_1 = language,
//	               Int32_2 = public flag (0/1).
const (
	ageInfoLanguageSlot = 1
	ageInfoPublicSlot   = 2
	ageInfoSequenceSlot = 1
)

// NewDispatch builds the Auth channel's Dispatch bound to sess and w.
// w is captured directly so handlers that need to push more than one
// reply message (AcctLoginRequest's AcctPlayerInfo fan-out, chunked
// file downloads) can do so without changing proto.Dispatch's one
// reply per request shape.
func NewDispatch(sess *Session, w *wire.Writer, deps Deps) proto.Dispatch {
	return proto.Dispatch{
		MsgPingRequest:              handlePing,
		MsgClientRegisterRequest:    handleClientRegister(sess, w, deps),
		MsgClientSetCCRLevel:        handleClientSetCCRLevel,
		MsgAcctLoginRequest:         handleAcctLogin(sess, w, deps),
		MsgAcctSetPlayerRequest:     handleAcctSetPlayer(sess),
		MsgAcctCreateRequest:        handleAcctCreate(deps),
		MsgAcctChangePasswordRequest: stubNotSupported(MsgAcctChangePasswordReply),
		MsgAcctSetRolesRequest:       stubNotSupported(MsgAcctSetRolesReply),
		MsgAcctSetBillingTypeRequest: stubNotSupported(MsgAcctSetBillingTypeReply),
		MsgAcctActivateRequest:       stubNotSupported(MsgAcctActivateReply),
		MsgAcctCreateFromKeyRequest:  handleAcctCreateFromKeyStub,
		MsgPlayerDeleteRequest:      handlePlayerDelete(sess, deps),
		MsgPlayerCreateRequest:      handlePlayerCreate(sess, deps),
		MsgUpgradeVisitorRequest:    stubNotSupported(MsgUpgradeVisitorReply),
		MsgSetPlayerBanStatusRequest: stubNotSupported(MsgSetPlayerBanStatusReply),
		MsgKickPlayer:               handleNoReply,
		MsgChangePlayerNameRequest:  stubNotSupported(MsgChangePlayerNameReply),
		MsgSendFriendInviteRequest:  stubNotSupported(MsgSendFriendInviteReply),
		MsgVaultNodeCreate:          handleVaultNodeCreate(deps),
		MsgVaultNodeFetch:           handleVaultNodeFetch(deps),
		MsgVaultNodeSave:            handleVaultNodeSave(deps),
		MsgVaultNodeDelete:          handleVaultNodeDelete(deps),
		MsgVaultNodeAdd:             handleVaultNodeAdd(deps),
		MsgVaultNodeRemove:          handleVaultNodeRemove(deps),
		MsgVaultFetchNodeRefs:       handleVaultFetchNodeRefs(deps),
		MsgVaultInitAgeRequest:      handleVaultInitAge(deps),
		MsgVaultNodeFind:            handleVaultNodeFind(deps),
		MsgVaultSetSeen:             handleNoReply,
		MsgVaultSendNode:            handleNoReply,
		MsgAgeRequest:               handleAgeRequest(deps),
		MsgFileListRequest:          handleFileListRequest(deps),
		MsgFileDownloadRequest:      handleFileDownloadRequest(sess, deps),
		MsgFileDownloadChunkAck:     handleFileDownloadChunkAck(sess),
		MsgPropagateBuffer:          handlePropagateBuffer,
		MsgGetPublicAgeList:         handleGetPublicAgeList(deps),
		MsgSetAgePublic:             handleSetAgePublic(deps),
		MsgLogPythonTraceback:       handleLogTraceback,
		MsgLogStackDump:             handleLogStackDump,
		MsgLogClientDebuggerConnect: handleNoReply,
		MsgScoreCreate:              handleScoreCreate(deps),
		MsgScoreDelete:              handleScoreDelete(deps),
		MsgScoreGetScores:           handleScoreGetScores(deps),
		MsgScoreAddPoints:           handleScoreAddPoints(deps),
		MsgScoreTransferPoints:      handleScoreTransferPoints(deps),
		MsgScoreSetPoints:           handleScoreSetPoints(deps),
		MsgScoreGetRanks:            handleScoreGetRanks(deps),
		MsgAccountExistsRequest:     handleAccountExists(deps),
		MsgScoreGetHighScores:       handleScoreGetHighScores(deps),
	}
}

func handleNoReply(msg *proto.Message) (uint16, map[string]any, bool, error) {
	return 0, nil, false, nil
}

// stubNotSupported answers replyID with netNotSupported, for the
// account-administration operations this server (like the original it
// was distilled from) never implements (DESIGN.md "Account-administration
// stubs"). Every one of these replies is just (trans_id,
// result); any extra reply fields (account_id, activation_key) are left
// at their zero value.
func stubNotSupported(replyID uint16) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		return replyID, map[string]any{
			"trans_id": msg.Uint32("trans_id"),
			"result":   int32(netNotSupported),
		}, true, nil
	}
}

func handleAcctCreateFromKeyStub(msg *proto.Message) (uint16, map[string]any, bool, error) {
	return MsgAcctCreateFromKeyReply, map[string]any{
		"trans_id":       msg.Uint32("trans_id"),
		"result":         int32(netNotSupported),
		"account_id":     uuid.Nil,
		"activation_key": uuid.Nil,
	}, true, nil
}

func handlePing(msg *proto.Message) (uint16, map[string]any, bool, error) {
	return MsgPingReply, map[string]any{
		"ping_time":   msg.Uint32("ping_time"),
		"trans_id":    msg.Uint32("trans_id"),
		"payload_len": uint32(len(msg.Bytes("payload"))),
		"payload":     msg.Bytes("payload"),
	}, true, nil
}

func handleClientSetCCRLevel(msg *proto.Message) (uint16, map[string]any, bool, error) {
	return 0, nil, false, nil
}

// handleClientRegister hands out a fresh server challenge (spec.md
// §6.3 "the login exchange begins with a per-connection server
// challenge") and, if the client's reported build doesn't match the
// configured one, pushes a NotifyNewBuild alongside the normal reply so
// the client knows to patch before logging in.
func handleClientRegister(sess *Session, w *wire.Writer, deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		sess.ServerChallenge = randomUint32()

		if err := proto.Encode(w, ReplyTable, MsgClientRegisterReply, map[string]any{
			"server_challenge": sess.ServerChallenge,
		}); err != nil {
			return 0, nil, false, err
		}

		if deps.Manifest != nil && !deps.Manifest.CheckBuildID(msg.Uint32("build_id")) {
			if err := proto.Encode(w, ReplyTable, MsgNotifyNewBuild, map[string]any{"dummy": uint32(0)}); err != nil {
				return 0, nil, false, err
			}
		}
		return 0, nil, false, nil
	}
}

func randomUint32() uint32 {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return binary.LittleEndian.Uint32(b[:])
}

// handleAcctLogin verifies the challenge-hashed password and, on
// success, pushes the AcctLoginReply followed by one AcctPlayerInfo per
// playable avatar (spec.md §4.D "AcctLoginRequest... followed by zero
// or more AcctPlayerInfo messages, one per playable avatar on the
// account"): a second reply type fanned out from a single request,
// which is why this handler writes directly to w instead of returning
// through the normal one-reply Dispatch path.
func handleAcctLogin(sess *Session, w *wire.Writer, deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		ctx := context.Background()
		transID := msg.Uint32("trans_id")

		fail := func(result netResult) error {
			return proto.Encode(w, ReplyTable, MsgAcctLoginReply, map[string]any{
				"trans_id":       transID,
				"result":         int32(result),
				"account_id":     uuid.Nil,
				"account_flags":  uint32(0),
				"billing_type":   uint32(0),
				"encryption_key": make([]byte, 16),
			})
		}

		acc, err := deps.Backend.AccountByName(ctx, msg.String("account_name"))
		if err != nil {
			if moulerr.Is(err, moulerr.NotFound) {
				return 0, nil, false, fail(netAccountNotFound)
			}
			return 0, nil, false, err
		}
		if acc.Flags.Has(model.AccountBanned) {
			return 0, nil, false, fail(netAuthenticationFailed)
		}
		if deps.RestrictLogins && !acc.Flags.Has(model.AccountAdmin) {
			return 0, nil, false, fail(netServiceForbidden)
		}

		var submitted [20]byte
		copy(submitted[:], msg.Bytes("pass_hash"))
		expected := model.ChallengeHash(acc.PassHash, sess.ServerChallenge, msg.Uint32("client_challenge"))
		if !model.ConstantTimeEqual(submitted, expected) {
			return 0, nil, false, fail(netAuthenticationFailed)
		}

		players, err := deps.Backend.PlayersForAccount(ctx, acc.ID)
		if err != nil {
			return 0, nil, false, err
		}

		sess.LoggedIn = true
		sess.AccountID = acc.ID
		sess.AccountFlags = acc.Flags
		sess.BillingTier = acc.BillingTier
		sess.Players = players

		if err := proto.Encode(w, ReplyTable, MsgAcctLoginReply, map[string]any{
			"trans_id":       transID,
			"result":         int32(netSuccess),
			"account_id":     acc.ID,
			"account_flags":  uint32(acc.Flags),
			"billing_type":   uint32(acc.BillingTier),
			"encryption_key": make([]byte, 16),
		}); err != nil {
			return 0, nil, false, err
		}

		for _, p := range players {
			explorer := uint32(0)
			if p.Explorer {
				explorer = 1
			}
			if err := proto.Encode(w, ReplyTable, MsgAcctPlayerInfo, map[string]any{
				"trans_id":     transID,
				"player_id":    p.PlayerIdx,
				"player_name":  p.PlayerName,
				"avatar_shape": "",
				"explorer":     explorer,
			}); err != nil {
				return 0, nil, false, err
			}
		}
		return 0, nil, false, nil
	}
}

func handleAcctCreate(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		ctx := context.Background()
		var hash [20]byte
		copy(hash[:], msg.Bytes("auth_hash"))
		acc := &model.Account{
			Name:        msg.String("account_name"),
			PassHash:    hash,
			Flags:       model.AccountFlags(msg.Uint32("account_flags")),
			BillingTier: int(msg.Uint32("billing_type")),
		}
		if err := deps.Backend.CreateAccount(ctx, acc); err != nil {
			if moulerr.Is(err, moulerr.Conflict) {
				return MsgAcctCreateReply, map[string]any{
					"trans_id": msg.Uint32("trans_id"), "result": int32(netAccountAlreadyExists), "account_id": uuid.Nil,
				}, true, nil
			}
			return 0, nil, false, err
		}
		return MsgAcctCreateReply, map[string]any{
			"trans_id": msg.Uint32("trans_id"), "result": int32(netSuccess), "account_id": acc.ID,
		}, true, nil
	}
}

func handleAcctSetPlayer(sess *Session) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		transID := msg.Uint32("trans_id")
		if !sess.LoggedIn {
			return MsgAcctSetPlayerReply, map[string]any{"trans_id": transID, "result": int32(netAuthenticationFailed)}, true, nil
		}
		playerID := msg.Uint32("player_id")
		if _, ok := sess.PlayerByIdx(playerID); !ok {
			return MsgAcctSetPlayerReply, map[string]any{"trans_id": transID, "result": int32(netPlayerNotFound)}, true, nil
		}
		sess.ActivePlayerIdx = playerID
		return MsgAcctSetPlayerReply, map[string]any{"trans_id": transID, "result": int32(netSuccess)}, true, nil
	}
}

func handlePlayerCreate(sess *Session, deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		ctx := context.Background()
		transID := msg.Uint32("trans_id")
		if !sess.LoggedIn {
			return MsgPlayerCreateReply, playerCreateFailure(transID, netAuthenticationFailed), true, nil
		}
		if len(sess.Players) >= maxPlayersPerAccount {
			return MsgPlayerCreateReply, playerCreateFailure(transID, netMaxPlayersOnAcct), true, nil
		}

		name := msg.String("player_name")
		n := &vault.Node{NodeType: vault.NodeTypePlayer}
		n.SetString(1, name)
		n.SetString(2, msg.String("avatar_shape"))
		n.SetInt32(1, 1) // explorer
		n.SetUUID(1, sess.AccountID)
		n.CreatorUUID = sess.AccountID
		n.Fields |= vault.FieldCreatorUUID | vault.FieldCreateTime
		n.CreateTime = time.Now()

		idx, err := deps.Vault.CreateNode(ctx, n)
		if err != nil {
			return 0, nil, false, err
		}
		if _, err := deps.Vault.ProvisionSkeleton(ctx, idx, vault.NodeTypePlayer, idx); err != nil {
			return 0, nil, false, err
		}

		p := model.Player{AccountID: sess.AccountID, PlayerIdx: idx, PlayerName: name, Explorer: true}
		if err := deps.Backend.CreatePlayer(ctx, &p); err != nil {
			return 0, nil, false, err
		}
		sess.Players = append(sess.Players, p)

		return MsgPlayerCreateReply, map[string]any{
			"trans_id": transID, "result": int32(netSuccess), "player_id": idx,
			"explorer": uint32(1), "player_name": name, "avatar_shape": msg.String("avatar_shape"),
		}, true, nil
	}
}

const maxPlayersPerAccount = 8

// playerCreateFailure fills every field PlayerCreateReply's spec
// declares, since proto.Encode looks up each one unconditionally and a
// missing entry panics rather than encoding a zero value.
func playerCreateFailure(transID uint32, result netResult) map[string]any {
	return map[string]any{
		"trans_id": transID, "result": int32(result), "player_id": uint32(0),
		"explorer": uint32(0), "player_name": "", "avatar_shape": "",
	}
}

func handlePlayerDelete(sess *Session, deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		ctx := context.Background()
		transID := msg.Uint32("trans_id")
		if !sess.LoggedIn {
			return MsgPlayerDeleteReply, map[string]any{"trans_id": transID, "result": int32(netAuthenticationFailed)}, true, nil
		}
		playerID := msg.Uint32("player_id")
		if _, ok := sess.PlayerByIdx(playerID); !ok {
			return MsgPlayerDeleteReply, map[string]any{"trans_id": transID, "result": int32(netPlayerNotFound)}, true, nil
		}
		if err := deps.Backend.DeletePlayer(ctx, sess.AccountID, playerID); err != nil {
			return 0, nil, false, err
		}
		sess.removePlayer(playerID)
		return MsgPlayerDeleteReply, map[string]any{"trans_id": transID, "result": int32(netSuccess)}, true, nil
	}
}

func handleVaultNodeCreate(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		transID := msg.Uint32("trans_id")
		n, err := vault.DecodeNode(msg.Bytes("node_buffer"))
		if err != nil {
			return 0, nil, false, err
		}
		n.Fields |= vault.FieldCreateTime | vault.FieldModifyTime
		n.CreateTime = time.Now()
		n.ModifyTime = n.CreateTime
		idx, err := deps.Vault.CreateNode(context.Background(), n)
		if err != nil {
			return 0, nil, false, err
		}
		return MsgVaultNodeCreated, map[string]any{"trans_id": transID, "result": int32(netSuccess), "node_id": idx}, true, nil
	}
}

func handleVaultNodeFetch(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		transID := msg.Uint32("trans_id")
		n, err := deps.Vault.FetchNode(context.Background(), msg.Uint32("node_id"))
		if err != nil {
			if moulerr.Is(err, moulerr.NotFound) {
				return MsgVaultNodeFetched, map[string]any{
					"trans_id": transID, "result": int32(netVaultNodeNotFound), "node_buffer_len": uint32(0), "node_buffer": []byte{},
				}, true, nil
			}
			return 0, nil, false, err
		}
		buf, err := vault.EncodeNode(n)
		if err != nil {
			return 0, nil, false, err
		}
		return MsgVaultNodeFetched, map[string]any{
			"trans_id": transID, "result": int32(netSuccess), "node_buffer_len": uint32(len(buf)), "node_buffer": buf,
		}, true, nil
	}
}

// handleVaultNodeSave applies only the fields present in the incoming
// buffer onto the stored node (spec.md §4.E invariant ii: an unset
// field must never be treated as "set to zero"), preserving the node's
// immutable NodeType and Idx (invariant i).
func handleVaultNodeSave(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		ctx := context.Background()
		transID := msg.Uint32("trans_id")
		idx := msg.Uint32("node_id")

		patch, err := vault.DecodeNode(msg.Bytes("node_buffer"))
		if err != nil {
			return 0, nil, false, err
		}
		existing, err := deps.Vault.FetchNode(ctx, idx)
		if err != nil {
			if moulerr.Is(err, moulerr.NotFound) {
				return MsgVaultSaveNodeReply, map[string]any{"trans_id": transID, "result": int32(netVaultNodeNotFound)}, true, nil
			}
			return 0, nil, false, err
		}

		applyNodePatch(existing, patch)
		existing.Fields |= vault.FieldModifyTime
		existing.ModifyTime = time.Now()

		if err := deps.Vault.SaveNode(ctx, existing); err != nil {
			return 0, nil, false, err
		}
		return MsgVaultSaveNodeReply, map[string]any{"trans_id": transID, "result": int32(netSuccess)}, true, nil
	}
}

func applyNodePatch(dst, patch *vault.Node) {
	for i := 1; i <= 4; i++ {
		if v, ok := patch.Int32At(i); ok {
			dst.SetInt32(i, v)
		}
		if v, ok := patch.Uint32At(i); ok {
			dst.SetUint32(i, v)
		}
		if v, ok := patch.UUIDAt(i); ok {
			dst.SetUUID(i, v)
		}
	}
	for i := 1; i <= 6; i++ {
		if v, ok := patch.StringAt(i); ok {
			dst.SetString(i, v)
		}
	}
	for i := 1; i <= 2; i++ {
		if v, ok := patch.IStringAt(i); ok {
			dst.SetIString(i, v)
		}
		if v, ok := patch.TextAt(i); ok {
			dst.SetText(i, v)
		}
		if v, ok := patch.BlobAt(i); ok {
			dst.SetBlob(i, v)
		}
	}
}

func handleVaultNodeDelete(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		if err := deps.Vault.DeleteNode(context.Background(), msg.Uint32("node_id")); err != nil && !moulerr.Is(err, moulerr.NotFound) {
			return 0, nil, false, err
		}
		return 0, nil, false, nil
	}
}

func handleVaultNodeAdd(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		transID := msg.Uint32("trans_id")
		err := deps.Vault.AddRef(context.Background(), msg.Uint32("parent_id"), msg.Uint32("child_id"), msg.Uint32("owner_id"))
		if err != nil {
			if moulerr.Is(err, moulerr.Protocol) {
				return MsgVaultAddNodeReply, map[string]any{"trans_id": transID, "result": int32(netInvalidParameter)}, true, nil
			}
			return 0, nil, false, err
		}
		return MsgVaultAddNodeReply, map[string]any{"trans_id": transID, "result": int32(netSuccess)}, true, nil
	}
}

func handleVaultNodeRemove(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		transID := msg.Uint32("trans_id")
		if err := deps.Vault.RemoveRef(context.Background(), msg.Uint32("parent_id"), msg.Uint32("child_id")); err != nil {
			return 0, nil, false, err
		}
		return MsgVaultRemoveNodeReply, map[string]any{"trans_id": transID, "result": int32(netSuccess)}, true, nil
	}
}

func handleVaultFetchNodeRefs(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		transID := msg.Uint32("trans_id")
		refs, err := deps.Vault.ChildRefs(context.Background(), msg.Uint32("node_id"))
		if err != nil {
			return 0, nil, false, err
		}
		records := make([]vault.RefRecord, len(refs))
		for i, r := range refs {
			records[i] = vault.RefRecord{ParentIdx: r.ParentIdx, ChildIdx: r.ChildIdx, OwnerIdx: r.OwnerIdx, Seen: r.Seen}
		}
		buf := vault.EncodeRefs(records)
		return MsgVaultNodeRefsFetched, map[string]any{
			"trans_id": transID, "result": int32(netSuccess), "refs_len": uint32(len(buf)), "refs": buf,
		}, true, nil
	}
}

// handleVaultInitAge creates the Age node and its standard skeleton
// (spec.md §4.D "VaultInitAgeRequest"). The returned age_info_vault_id
// names the skeleton's StandardAgeInfoNode entry, which
// ProvisionSkeleton always creates as a plain Folder rather than a
// dedicated NodeTypeAgeInfo record; GetPublicAgeList/SetAgePublic build
// their own AgeInfo nodes independently rather than depending on this
// one, so the simplification does not block either of them.
func handleVaultInitAge(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		ctx := context.Background()
		transID := msg.Uint32("trans_id")

		n := &vault.Node{NodeType: vault.NodeTypeAge}
		n.SetString(1, msg.String("age_filename"))
		n.SetString(2, msg.String("age_instance_name"))
		n.SetString(3, msg.String("age_user_name"))
		n.SetText(1, msg.String("age_description"))
		n.SetUUID(1, msg.UUID("age_instance_id"))
		n.SetUUID(2, msg.UUID("parent_age_instance_id"))
		n.SetUint32(1, msg.Uint32("age_sequence"))
		n.SetInt32(1, int32(msg.Uint32("age_language")))
		n.Fields |= vault.FieldCreateTime
		n.CreateTime = time.Now()

		ageIdx, err := deps.Vault.CreateNode(ctx, n)
		if err != nil {
			return 0, nil, false, err
		}
		skeleton, err := deps.Vault.ProvisionSkeleton(ctx, ageIdx, vault.NodeTypeAge, ageIdx)
		if err != nil {
			return 0, nil, false, err
		}

		return MsgVaultInitAgeReply, map[string]any{
			"trans_id": transID, "result": int32(netSuccess),
			"age_vault_id": ageIdx, "age_info_vault_id": skeleton[vault.StandardAgeInfoNode],
		}, true, nil
	}
}

func handleVaultNodeFind(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		transID := msg.Uint32("trans_id")
		tmpl, err := vault.DecodeNode(msg.Bytes("node_buffer"))
		if err != nil {
			return 0, nil, false, err
		}
		idxs, err := deps.Vault.FindNodes(context.Background(), tmpl)
		if err != nil {
			return 0, nil, false, err
		}
		buf := encodeUint32List(idxs)
		return MsgVaultNodeFindReply, map[string]any{
			"trans_id": transID, "result": int32(netSuccess), "ids_len": uint32(len(buf)), "node_ids": buf,
		}, true, nil
	}
}

func encodeUint32List(vals []uint32) []byte {
	buf := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}

// handleAgeRequest resolves (age_name, age_instance_id) to a running
// Instance (spec.md §4.D "AgeRequest"/§4.F "Join"). age_vault_id always
// reports 0: the Age instance manager's Instance has no vault-node
// cross-reference field to report one from (age.Instance carries only
// InstanceUUID/AgeFilename/AgeInstName), so resolving an Age's vault
// subtree root idx from its running instance is not wired.
func handleAgeRequest(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		ctx := context.Background()
		transID := msg.Uint32("trans_id")
		ageName := msg.String("age_name")

		fail := func(result netResult) (uint16, map[string]any, bool, error) {
			return MsgAgeReply, map[string]any{
				"trans_id": transID, "result": int32(result), "age_mcp_id": uint32(0),
				"age_instance_id": uuid.Nil, "age_vault_id": uint32(0), "game_server_node": uint32(0),
			}, true, nil
		}

		var inst *age.Instance
		if instanceID := msg.UUID("age_instance_id"); instanceID != uuid.Nil {
			found, ok := deps.Ages.ByInstanceUUID(instanceID)
			if !ok {
				return fail(netAgeNotFound)
			}
			inst = found
		} else {
			if ageName == "" {
				return fail(netInvalidParameter)
			}
			created, err := deps.Ages.GetOrCreate(ctx, ageName, "", true)
			if err != nil {
				return fail(netAgeNotFound)
			}
			inst = created
		}

		return MsgAgeReply, map[string]any{
			"trans_id": transID, "result": int32(netSuccess), "age_mcp_id": uint32(0),
			"age_instance_id": inst.InstanceUUID, "age_vault_id": uint32(0),
			"game_server_node": ipToUint32(deps.GameServerIP),
		}, true, nil
	}
}

func handleFileListRequest(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		transID := msg.Uint32("trans_id")
		buf, err := deps.Manifest.SecureFileList(msg.String("directory"), msg.String("ext"))
		if err != nil {
			return MsgFileListReply, map[string]any{
				"trans_id": transID, "result": int32(netFileNotFound), "manifest_len": uint32(0), "manifest": []byte{},
			}, true, nil
		}
		return MsgFileListReply, map[string]any{
			"trans_id": transID, "result": int32(netSuccess), "manifest_len": uint32(len(buf)), "manifest": buf,
		}, true, nil
	}
}

// handleFileDownloadRequest opens the requested file and sends its
// first chunk immediately; further chunks are pushed one at a time
// from handleFileDownloadChunkAck as the client acknowledges each one
// (spec.md §4.G "Download": "the server does not send chunk N+1 until
// ACK(N) is received").
func handleFileDownloadRequest(sess *Session, deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		transID := msg.Uint32("trans_id")
		fail := func(result netResult) (uint16, map[string]any, bool, error) {
			return MsgFileDownloadChunk, map[string]any{
				"trans_id": transID, "result": int32(result), "total_size": uint32(0),
				"offset": uint32(0), "data_len": uint32(0), "file_data": []byte{},
			}, true, nil
		}

		if sess.download != nil {
			_ = sess.download.Close()
			sess.download = nil
		}
		dl, err := deps.Manifest.OpenFileDownload(msg.String("filename"), nil)
		if err != nil {
			return fail(netFileNotFound)
		}

		seq, data, done, err := dl.NextChunk()
		if err != nil {
			_ = dl.Close()
			return fail(netInternalError)
		}
		sess.download = dl
		sess.downloadTrans = transID
		sess.downloadSeq = seq
		if done {
			_ = dl.Close()
			sess.download = nil
		}

		return MsgFileDownloadChunk, map[string]any{
			"trans_id": transID, "result": int32(netSuccess), "total_size": uint32(dl.TotalSize()),
			"offset": uint32(seq) * uint32(manifest.ChunkSize), "data_len": uint32(len(data)), "file_data": data,
		}, true, nil
	}
}

func handleFileDownloadChunkAck(sess *Session) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		if sess.download == nil {
			return 0, nil, false, nil
		}
		if err := sess.download.Ack(sess.downloadSeq); err != nil {
			return 0, nil, false, err
		}
		seq, data, done, err := sess.download.NextChunk()
		if err != nil {
			return 0, nil, false, err
		}
		total := uint32(sess.download.TotalSize())
		if done {
			_ = sess.download.Close()
			sess.download = nil
			return 0, nil, false, nil
		}
		sess.downloadSeq = seq

		return MsgFileDownloadChunk, map[string]any{
			"trans_id": sess.downloadTrans, "result": int32(netSuccess), "total_size": total,
			"offset": seq * uint32(manifest.ChunkSize), "data_len": uint32(len(data)), "file_data": data,
		}, true, nil
	}
}

// handlePropagateBuffer echoes the opaque capability-negotiation
// buffer back to the sender; the Auth channel has no broadcast target
// for it (that's the Game channel's plMessage propagation, spec.md
// §4.F), so the only defined behavior left is acknowledging receipt.
func handlePropagateBuffer(msg *proto.Message) (uint16, map[string]any, bool, error) {
	return MsgPropagateBufferReply, map[string]any{
		"type_id":    msg.Uint32("type_id"),
		"buffer_len": uint32(len(msg.Bytes("buffer"))),
		"buffer":     msg.Bytes("buffer"),
	}, true, nil
}

func handleGetPublicAgeList(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		ctx := context.Background()
		transID := msg.Uint32("trans_id")

		tmpl := &vault.Node{NodeType: vault.NodeTypeAgeInfo, Fields: vault.FieldNodeType}
		ageFilename := msg.String("age_filename")
		if ageFilename != "" {
			tmpl.SetString(1, ageFilename)
		}
		idxs, err := deps.Vault.FindNodes(ctx, tmpl)
		if err != nil {
			return 0, nil, false, err
		}

		var infos []AgeInfo
		for _, idx := range idxs {
			n, err := deps.Vault.FetchNode(ctx, idx)
			if err != nil {
				continue
			}
			if pub, ok := n.Int32At(ageInfoPublicSlot); !ok || pub == 0 {
				continue
			}
			filename, _ := n.StringAt(1)
			instName, _ := n.StringAt(2)
			userName, _ := n.StringAt(3)
			description, _ := n.TextAt(1)
			instanceID, _ := n.UUIDAt(1)
			sequence, _ := n.Uint32At(ageInfoSequenceSlot)
			language, _ := n.Int32At(ageInfoLanguageSlot)
			infos = append(infos, AgeInfo{
				InstanceID: instanceID, AgeFilename: filename, InstanceName: instName,
				UserName: userName, Description: description, SequenceNumber: sequence, Language: language,
			})
		}

		buf, err := EncodeAgeInfoList(infos)
		if err != nil {
			return 0, nil, false, err
		}
		return MsgPublicAgeList, map[string]any{
			"trans_id": transID, "result": int32(netSuccess), "ages_len": uint32(len(buf)), "ages": buf,
		}, true, nil
	}
}

func handleSetAgePublic(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		ctx := context.Background()
		n, err := deps.Vault.FetchNode(ctx, msg.Uint32("age_info_id"))
		if err != nil {
			return 0, nil, false, nil
		}
		n.SetInt32(ageInfoPublicSlot, int32(msg.Uint8("public")))
		n.Fields |= vault.FieldModifyTime
		n.ModifyTime = time.Now()
		if err := deps.Vault.SaveNode(ctx, n); err != nil {
			return 0, nil, false, err
		}
		return 0, nil, false, nil
	}
}

func handleLogTraceback(msg *proto.Message) (uint16, map[string]any, bool, error) {
	log.Warnw("client python traceback", "traceback", msg.String("traceback"))
	return 0, nil, false, nil
}

func handleLogStackDump(msg *proto.Message) (uint16, map[string]any, bool, error) {
	log.Warnw("client stack dump", "dump", msg.String("stackdump"))
	return 0, nil, false, nil
}

func handleScoreCreate(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		transID := msg.Uint32("trans_id")
		now := time.Now()
		s := &model.Score{
			OwnerIdx: msg.Uint32("owner_id"), Type: int32(msg.Uint32("game_type")),
			Name: msg.String("game_name"), Points: int32(msg.Uint32("value")), CreateTime: now,
		}
		id, err := deps.Backend.CreateScore(context.Background(), s)
		if err != nil {
			return 0, nil, false, err
		}
		return MsgScoreCreateReply, map[string]any{
			"trans_id": transID, "result": int32(netSuccess), "score_id": id, "created_time": uint32(now.Unix()),
		}, true, nil
	}
}

func handleScoreDelete(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		transID := msg.Uint32("trans_id")
		if err := deps.Backend.DeleteScore(context.Background(), msg.Uint32("score_id")); err != nil {
			if moulerr.Is(err, moulerr.NotFound) {
				return MsgScoreDeleteReply, map[string]any{"trans_id": transID, "result": int32(netVaultNodeNotFound)}, true, nil
			}
			return 0, nil, false, err
		}
		return MsgScoreDeleteReply, map[string]any{"trans_id": transID, "result": int32(netSuccess)}, true, nil
	}
}

func handleScoreGetScores(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		ctx := context.Background()
		transID := msg.Uint32("trans_id")
		scores, err := deps.Backend.ScoresForOwner(ctx, msg.Uint32("owner_id"), -1)
		if err != nil {
			return 0, nil, false, err
		}
		scores = filterScoresByName(scores, msg.String("game_name"))
		buf, err := encodeScoreList(scores)
		if err != nil {
			return 0, nil, false, err
		}
		return MsgScoreGetScoresReply, map[string]any{
			"trans_id": transID, "result": int32(netSuccess), "score_count": uint32(len(scores)),
			"buffer_len": uint32(len(buf)), "score_buffer": buf,
		}, true, nil
	}
}

func filterScoresByName(scores []model.Score, name string) []model.Score {
	if name == "" {
		return scores
	}
	out := scores[:0]
	for _, s := range scores {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

func handleScoreAddPoints(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		transID := msg.Uint32("trans_id")
		if err := deps.Backend.AddScorePoints(context.Background(), msg.Uint32("score_id"), int32(msg.Uint32("points"))); err != nil {
			return 0, nil, false, err
		}
		return MsgScoreAddPointsReply, map[string]any{"trans_id": transID, "result": int32(netSuccess)}, true, nil
	}
}

func handleScoreTransferPoints(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		ctx := context.Background()
		transID := msg.Uint32("trans_id")
		points := int32(msg.Uint32("points"))
		if err := deps.Backend.AddScorePoints(ctx, msg.Uint32("src_score_id"), -points); err != nil {
			return 0, nil, false, err
		}
		if err := deps.Backend.AddScorePoints(ctx, msg.Uint32("dest_score_id"), points); err != nil {
			// Not rolled back: the backend has no cross-score transaction,
			// matching DESIGN.md's documented limitation for this op.
			return 0, nil, false, err
		}
		return MsgScoreTransferPointsReply, map[string]any{"trans_id": transID, "result": int32(netSuccess)}, true, nil
	}
}

func handleScoreSetPoints(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		transID := msg.Uint32("trans_id")
		if err := deps.Backend.SetScorePoints(context.Background(), msg.Uint32("score_id"), int32(msg.Uint32("points"))); err != nil {
			return 0, nil, false, err
		}
		return MsgScoreSetPointsReply, map[string]any{"trans_id": transID, "result": int32(netSuccess)}, true, nil
	}
}

func handleScoreGetRanks(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		ctx := context.Background()
		transID := msg.Uint32("trans_id")
		scores, err := deps.Backend.ScoresForOwner(ctx, msg.Uint32("owner_id"), -1)
		if err != nil {
			return 0, nil, false, err
		}
		scores = filterScoresByName(scores, msg.String("game_name"))
		scores = sortScoresForRanks(scores, msg.Uint32("sort_desc") != 0, msg.Uint32("page_number"), msg.Uint32("num_results"))
		buf, err := encodeScoreList(scores)
		if err != nil {
			return 0, nil, false, err
		}
		return MsgScoreGetRanksReply, map[string]any{
			"trans_id": transID, "result": int32(netSuccess), "rank_count": uint32(len(scores)),
			"buffer_len": uint32(len(buf)), "rank_buffer": buf,
		}, true, nil
	}
}

func handleAccountExists(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		transID := msg.Uint32("trans_id")
		_, err := deps.Backend.AccountByName(context.Background(), msg.String("account_name"))
		exists := uint8(1)
		if err != nil {
			if !moulerr.Is(err, moulerr.NotFound) {
				return 0, nil, false, err
			}
			exists = 0
		}
		return MsgAccountExistsReply, map[string]any{"trans_id": transID, "result": int32(netSuccess), "exists": exists}, true, nil
	}
}

func handleScoreGetHighScores(deps Deps) proto.Handler {
	return func(msg *proto.Message) (uint16, map[string]any, bool, error) {
		ctx := context.Background()
		transID := msg.Uint32("trans_id")
		scores, err := deps.Backend.ScoresForOwner(ctx, msg.Uint32("age_id"), -1)
		if err != nil {
			return 0, nil, false, err
		}
		scores = filterScoresByName(scores, msg.String("game_name"))
		scores = sortScoresForRanks(scores, true, 0, msg.Uint32("max_scores"))
		buf, err := encodeScoreList(scores)
		if err != nil {
			return 0, nil, false, err
		}
		return MsgScoreGetHighScoresReply, map[string]any{
			"trans_id": transID, "result": int32(netSuccess), "score_count": uint32(len(scores)),
			"buffer_len": uint32(len(buf)), "score_buffer": buf,
		}, true, nil
	}
}
