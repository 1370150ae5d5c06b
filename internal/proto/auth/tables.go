package auth

import "github.com/zrax/moulars/internal/proto"

const (
	maxPingPayload      = 64 * 1024
	maxNodeBufferSize   = 1024 * 1024
	maxPropagateBuffer  = 1024 * 1024
)

// RequestTable decodes Cli2Auth messages (spec.md §4.D "Auth (10)").
var RequestTable = proto.Table{
	MsgPingRequest: {ID: MsgPingRequest, Name: "PingRequest", Fields: []proto.Field{
		{Name: "ping_time", Kind: proto.FieldUint32},
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "payload_len", Kind: proto.FieldUint32},
		{Name: "payload", Kind: proto.FieldVariableBuffer, CountFrom: "payload_len"},
	}},
	MsgClientRegisterRequest: {ID: MsgClientRegisterRequest, Name: "ClientRegisterRequest", Fields: []proto.Field{
		{Name: "build_id", Kind: proto.FieldUint32},
	}},
	MsgClientSetCCRLevel: {ID: MsgClientSetCCRLevel, Name: "ClientSetCCRLevel", Fields: []proto.Field{
		{Name: "ccr_level", Kind: proto.FieldUint32},
	}},
	MsgAcctLoginRequest: {ID: MsgAcctLoginRequest, Name: "AcctLoginRequest", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "client_challenge", Kind: proto.FieldUint32},
		{Name: "account_name", Kind: proto.FieldUTF16String},
		{Name: "pass_hash", Kind: proto.FieldFixedBuffer, Size: 20},
		{Name: "auth_token", Kind: proto.FieldUTF16String},
		{Name: "os", Kind: proto.FieldUTF16String},
	}},
	MsgAcctSetPlayerRequest: {ID: MsgAcctSetPlayerRequest, Name: "AcctSetPlayerRequest", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "player_id", Kind: proto.FieldUint32},
	}},
	MsgAcctCreateRequest: {ID: MsgAcctCreateRequest, Name: "AcctCreateRequest", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "account_name", Kind: proto.FieldUTF16String},
		{Name: "auth_hash", Kind: proto.FieldFixedBuffer, Size: 20},
		{Name: "account_flags", Kind: proto.FieldUint32},
		{Name: "billing_type", Kind: proto.FieldUint32},
	}},
	MsgAcctChangePasswordRequest: {ID: MsgAcctChangePasswordRequest, Name: "AcctChangePasswordRequest", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "account_name", Kind: proto.FieldUTF16String},
		{Name: "auth_hash", Kind: proto.FieldFixedBuffer, Size: 20},
	}},
	MsgAcctSetRolesRequest: {ID: MsgAcctSetRolesRequest, Name: "AcctSetRolesRequest", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "account_name", Kind: proto.FieldUTF16String},
		{Name: "account_flags", Kind: proto.FieldUint32},
	}},
	MsgAcctSetBillingTypeRequest: {ID: MsgAcctSetBillingTypeRequest, Name: "AcctSetBillingTypeRequest", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "account_name", Kind: proto.FieldUTF16String},
		{Name: "billing_type", Kind: proto.FieldUint32},
	}},
	MsgAcctActivateRequest: {ID: MsgAcctActivateRequest, Name: "AcctActivateRequest", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "activation_key", Kind: proto.FieldUUID},
	}},
	MsgAcctCreateFromKeyRequest: {ID: MsgAcctCreateFromKeyRequest, Name: "AcctCreateFromKeyRequest", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "account_name", Kind: proto.FieldUTF16String},
		{Name: "auth_hash", Kind: proto.FieldFixedBuffer, Size: 20},
		{Name: "key", Kind: proto.FieldUUID},
		{Name: "billing_type", Kind: proto.FieldUint32},
	}},
	MsgPlayerDeleteRequest: {ID: MsgPlayerDeleteRequest, Name: "PlayerDeleteRequest", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "player_id", Kind: proto.FieldUint32},
	}},
	MsgPlayerCreateRequest: {ID: MsgPlayerCreateRequest, Name: "PlayerCreateRequest", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "player_name", Kind: proto.FieldUTF16String},
		{Name: "avatar_shape", Kind: proto.FieldUTF16String},
		{Name: "friend_invite", Kind: proto.FieldUTF16String},
	}},
	MsgUpgradeVisitorRequest: {ID: MsgUpgradeVisitorRequest, Name: "UpgradeVisitorRequest", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "player_id", Kind: proto.FieldUint32},
	}},
	MsgSetPlayerBanStatusRequest: {ID: MsgSetPlayerBanStatusRequest, Name: "SetPlayerBanStatusRequest", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "player_id", Kind: proto.FieldUint32},
		{Name: "banned", Kind: proto.FieldUint32},
	}},
	MsgKickPlayer: {ID: MsgKickPlayer, Name: "KickPlayer", Fields: []proto.Field{
		{Name: "player_id", Kind: proto.FieldUint32},
	}},
	MsgChangePlayerNameRequest: {ID: MsgChangePlayerNameRequest, Name: "ChangePlayerNameRequest", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "player_id", Kind: proto.FieldUint32},
		{Name: "new_name", Kind: proto.FieldUTF16String},
	}},
	MsgSendFriendInviteRequest: {ID: MsgSendFriendInviteRequest, Name: "SendFriendInviteRequest", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "invite_id", Kind: proto.FieldUUID},
		{Name: "email_address", Kind: proto.FieldUTF16String},
		{Name: "to_player", Kind: proto.FieldUTF16String},
	}},
	MsgVaultNodeCreate: {ID: MsgVaultNodeCreate, Name: "VaultNodeCreate", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "node_buffer_len", Kind: proto.FieldUint32},
		{Name: "node_buffer", Kind: proto.FieldVariableBuffer, CountFrom: "node_buffer_len"},
	}},
	MsgVaultNodeFetch: {ID: MsgVaultNodeFetch, Name: "VaultNodeFetch", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "node_id", Kind: proto.FieldUint32},
	}},
	MsgVaultNodeSave: {ID: MsgVaultNodeSave, Name: "VaultNodeSave", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "node_id", Kind: proto.FieldUint32},
		{Name: "revision", Kind: proto.FieldUUID},
		{Name: "node_buffer_len", Kind: proto.FieldUint32},
		{Name: "node_buffer", Kind: proto.FieldVariableBuffer, CountFrom: "node_buffer_len"},
	}},
	MsgVaultNodeDelete: {ID: MsgVaultNodeDelete, Name: "VaultNodeDelete", Fields: []proto.Field{
		{Name: "node_id", Kind: proto.FieldUint32},
	}},
	MsgVaultNodeAdd: {ID: MsgVaultNodeAdd, Name: "VaultNodeAdd", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "parent_id", Kind: proto.FieldUint32},
		{Name: "child_id", Kind: proto.FieldUint32},
		{Name: "owner_id", Kind: proto.FieldUint32},
	}},
	MsgVaultNodeRemove: {ID: MsgVaultNodeRemove, Name: "VaultNodeRemove", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "parent_id", Kind: proto.FieldUint32},
		{Name: "child_id", Kind: proto.FieldUint32},
	}},
	MsgVaultFetchNodeRefs: {ID: MsgVaultFetchNodeRefs, Name: "VaultFetchNodeRefs", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "node_id", Kind: proto.FieldUint32},
	}},
	MsgVaultInitAgeRequest: {ID: MsgVaultInitAgeRequest, Name: "VaultInitAgeRequest", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "age_instance_id", Kind: proto.FieldUUID},
		{Name: "parent_age_instance_id", Kind: proto.FieldUUID},
		{Name: "age_filename", Kind: proto.FieldUTF16String},
		{Name: "age_instance_name", Kind: proto.FieldUTF16String},
		{Name: "age_user_name", Kind: proto.FieldUTF16String},
		{Name: "age_description", Kind: proto.FieldUTF16String},
		{Name: "age_sequence", Kind: proto.FieldUint32},
		{Name: "age_language", Kind: proto.FieldUint32},
	}},
	MsgVaultNodeFind: {ID: MsgVaultNodeFind, Name: "VaultNodeFind", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "node_buffer_len", Kind: proto.FieldUint32},
		{Name: "node_buffer", Kind: proto.FieldVariableBuffer, CountFrom: "node_buffer_len"},
	}},
	MsgVaultSetSeen: {ID: MsgVaultSetSeen, Name: "VaultSetSeen", Fields: []proto.Field{
		{Name: "parent_id", Kind: proto.FieldUint32},
		{Name: "child_id", Kind: proto.FieldUint32},
		{Name: "seen", Kind: proto.FieldUint8},
	}},
	MsgVaultSendNode: {ID: MsgVaultSendNode, Name: "VaultSendNode", Fields: []proto.Field{
		{Name: "src_node_id", Kind: proto.FieldUint32},
		{Name: "dest_player_id", Kind: proto.FieldUint32},
	}},
	MsgAgeRequest: {ID: MsgAgeRequest, Name: "AgeRequest", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "age_name", Kind: proto.FieldUTF16String},
		{Name: "age_instance_id", Kind: proto.FieldUUID},
	}},
	MsgFileListRequest: {ID: MsgFileListRequest, Name: "FileListRequest", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "directory", Kind: proto.FieldUTF16String},
		{Name: "ext", Kind: proto.FieldUTF16String},
	}},
	MsgFileDownloadRequest: {ID: MsgFileDownloadRequest, Name: "FileDownloadRequest", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "filename", Kind: proto.FieldUTF16String},
	}},
	MsgFileDownloadChunkAck: {ID: MsgFileDownloadChunkAck, Name: "FileDownloadChunkAck", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
	}},
	MsgPropagateBuffer: {ID: MsgPropagateBuffer, Name: "PropagateBuffer", Fields: []proto.Field{
		{Name: "type_id", Kind: proto.FieldUint32},
		{Name: "buffer_len", Kind: proto.FieldUint32},
		{Name: "buffer", Kind: proto.FieldVariableBuffer, CountFrom: "buffer_len"},
	}},
	MsgGetPublicAgeList: {ID: MsgGetPublicAgeList, Name: "GetPublicAgeList", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "age_filename", Kind: proto.FieldUTF16String},
	}},
	MsgSetAgePublic: {ID: MsgSetAgePublic, Name: "SetAgePublic", Fields: []proto.Field{
		{Name: "age_info_id", Kind: proto.FieldUint32},
		{Name: "public", Kind: proto.FieldUint8},
	}},
	MsgLogPythonTraceback: {ID: MsgLogPythonTraceback, Name: "LogPythonTraceback", Fields: []proto.Field{
		{Name: "traceback", Kind: proto.FieldUTF16String},
	}},
	MsgLogStackDump: {ID: MsgLogStackDump, Name: "LogStackDump", Fields: []proto.Field{
		{Name: "stackdump", Kind: proto.FieldUTF16String},
	}},
	MsgLogClientDebuggerConnect: {ID: MsgLogClientDebuggerConnect, Name: "LogClientDebuggerConnect", Fields: []proto.Field{
		{Name: "dummy", Kind: proto.FieldUint32},
	}},
	MsgScoreCreate: {ID: MsgScoreCreate, Name: "ScoreCreate", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "owner_id", Kind: proto.FieldUint32},
		{Name: "game_name", Kind: proto.FieldUTF16String},
		{Name: "game_type", Kind: proto.FieldUint32},
		{Name: "value", Kind: proto.FieldUint32},
	}},
	MsgScoreDelete: {ID: MsgScoreDelete, Name: "ScoreDelete", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "score_id", Kind: proto.FieldUint32},
	}},
	MsgScoreGetScores: {ID: MsgScoreGetScores, Name: "ScoreGetScores", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "owner_id", Kind: proto.FieldUint32},
		{Name: "game_name", Kind: proto.FieldUTF16String},
	}},
	MsgScoreAddPoints: {ID: MsgScoreAddPoints, Name: "ScoreAddPoints", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "score_id", Kind: proto.FieldUint32},
		{Name: "points", Kind: proto.FieldUint32},
	}},
	MsgScoreTransferPoints: {ID: MsgScoreTransferPoints, Name: "ScoreTransferPoints", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "src_score_id", Kind: proto.FieldUint32},
		{Name: "dest_score_id", Kind: proto.FieldUint32},
		{Name: "points", Kind: proto.FieldUint32},
	}},
	MsgScoreSetPoints: {ID: MsgScoreSetPoints, Name: "ScoreSetPoints", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "score_id", Kind: proto.FieldUint32},
		{Name: "points", Kind: proto.FieldUint32},
	}},
	MsgScoreGetRanks: {ID: MsgScoreGetRanks, Name: "ScoreGetRanks", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "owner_id", Kind: proto.FieldUint32},
		{Name: "score_group", Kind: proto.FieldUint32},
		{Name: "parent_folder_id", Kind: proto.FieldUint32},
		{Name: "game_name", Kind: proto.FieldUTF16String},
		{Name: "time_period", Kind: proto.FieldUint32},
		{Name: "num_results", Kind: proto.FieldUint32},
		{Name: "page_number", Kind: proto.FieldUint32},
		{Name: "sort_desc", Kind: proto.FieldUint32},
	}},
	MsgAccountExistsRequest: {ID: MsgAccountExistsRequest, Name: "AccountExistsRequest", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "account_name", Kind: proto.FieldUTF16String},
	}},
	MsgScoreGetHighScores: {ID: MsgScoreGetHighScores, Name: "ScoreGetHighScores", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "age_id", Kind: proto.FieldUint32},
		{Name: "max_scores", Kind: proto.FieldUint32},
		{Name: "game_name", Kind: proto.FieldUTF16String},
	}},
}

// ReplyTable encodes Auth -> client messages.
var ReplyTable = proto.Table{
	MsgPingReply: {ID: MsgPingReply, Name: "PingReply", Fields: []proto.Field{
		{Name: "ping_time", Kind: proto.FieldUint32},
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "payload_len", Kind: proto.FieldUint32},
		{Name: "payload", Kind: proto.FieldVariableBuffer, CountFrom: "payload_len"},
	}},
	MsgNotifyNewBuild: {ID: MsgNotifyNewBuild, Name: "NotifyNewBuild", Fields: []proto.Field{
		{Name: "dummy", Kind: proto.FieldUint32},
	}},
	MsgClientRegisterReply: {ID: MsgClientRegisterReply, Name: "ClientRegisterReply", Fields: []proto.Field{
		{Name: "server_challenge", Kind: proto.FieldUint32},
	}},
	MsgAcctLoginReply: {ID: MsgAcctLoginReply, Name: "AcctLoginReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
		{Name: "account_id", Kind: proto.FieldUUID},
		{Name: "account_flags", Kind: proto.FieldUint32},
		{Name: "billing_type", Kind: proto.FieldUint32},
		{Name: "encryption_key", Kind: proto.FieldFixedBuffer, Size: 16},
	}},
	MsgAcctPlayerInfo: {ID: MsgAcctPlayerInfo, Name: "AcctPlayerInfo", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "player_id", Kind: proto.FieldUint32},
		{Name: "player_name", Kind: proto.FieldUTF16String},
		{Name: "avatar_shape", Kind: proto.FieldUTF16String},
		{Name: "explorer", Kind: proto.FieldUint32},
	}},
	MsgAcctSetPlayerReply: {ID: MsgAcctSetPlayerReply, Name: "AcctSetPlayerReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
	}},
	MsgAcctCreateReply: {ID: MsgAcctCreateReply, Name: "AcctCreateReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
		{Name: "account_id", Kind: proto.FieldUUID},
	}},
	MsgAcctChangePasswordReply: {ID: MsgAcctChangePasswordReply, Name: "AcctChangePasswordReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
	}},
	MsgAcctSetRolesReply: {ID: MsgAcctSetRolesReply, Name: "AcctSetRolesReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
	}},
	MsgAcctSetBillingTypeReply: {ID: MsgAcctSetBillingTypeReply, Name: "AcctSetBillingTypeReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
	}},
	MsgAcctActivateReply: {ID: MsgAcctActivateReply, Name: "AcctActivateReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
	}},
	MsgAcctCreateFromKeyReply: {ID: MsgAcctCreateFromKeyReply, Name: "AcctCreateFromKeyReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
		{Name: "account_id", Kind: proto.FieldUUID},
		{Name: "activation_key", Kind: proto.FieldUUID},
	}},
	MsgPlayerCreateReply: {ID: MsgPlayerCreateReply, Name: "PlayerCreateReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
		{Name: "player_id", Kind: proto.FieldUint32},
		{Name: "explorer", Kind: proto.FieldUint32},
		{Name: "player_name", Kind: proto.FieldUTF16String},
		{Name: "avatar_shape", Kind: proto.FieldUTF16String},
	}},
	MsgPlayerDeleteReply: {ID: MsgPlayerDeleteReply, Name: "PlayerDeleteReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
	}},
	MsgUpgradeVisitorReply: {ID: MsgUpgradeVisitorReply, Name: "UpgradeVisitorReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
	}},
	MsgSetPlayerBanStatusReply: {ID: MsgSetPlayerBanStatusReply, Name: "SetPlayerBanStatusReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
	}},
	MsgChangePlayerNameReply: {ID: MsgChangePlayerNameReply, Name: "ChangePlayerNameReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
	}},
	MsgSendFriendInviteReply: {ID: MsgSendFriendInviteReply, Name: "SendFriendInviteReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
	}},
	MsgVaultNodeCreated: {ID: MsgVaultNodeCreated, Name: "VaultNodeCreated", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
		{Name: "node_id", Kind: proto.FieldUint32},
	}},
	MsgVaultNodeFetched: {ID: MsgVaultNodeFetched, Name: "VaultNodeFetched", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
		{Name: "node_buffer_len", Kind: proto.FieldUint32},
		{Name: "node_buffer", Kind: proto.FieldVariableBuffer, CountFrom: "node_buffer_len"},
	}},
	MsgVaultNodeChanged: {ID: MsgVaultNodeChanged, Name: "VaultNodeChanged", Fields: []proto.Field{
		{Name: "node_id", Kind: proto.FieldUint32},
		{Name: "revision_id", Kind: proto.FieldUUID},
	}},
	MsgVaultNodeDeleted: {ID: MsgVaultNodeDeleted, Name: "VaultNodeDeleted", Fields: []proto.Field{
		{Name: "node_id", Kind: proto.FieldUint32},
	}},
	MsgVaultNodeAdded: {ID: MsgVaultNodeAdded, Name: "VaultNodeAdded", Fields: []proto.Field{
		{Name: "parent_id", Kind: proto.FieldUint32},
		{Name: "child_id", Kind: proto.FieldUint32},
		{Name: "owner_id", Kind: proto.FieldUint32},
	}},
	MsgVaultNodeRemoved: {ID: MsgVaultNodeRemoved, Name: "VaultNodeRemoved", Fields: []proto.Field{
		{Name: "parent_id", Kind: proto.FieldUint32},
		{Name: "child_id", Kind: proto.FieldUint32},
	}},
	MsgVaultNodeRefsFetched: {ID: MsgVaultNodeRefsFetched, Name: "VaultNodeRefsFetched", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
		{Name: "refs_len", Kind: proto.FieldUint32},
		{Name: "refs", Kind: proto.FieldVariableBuffer, CountFrom: "refs_len"},
	}},
	MsgVaultInitAgeReply: {ID: MsgVaultInitAgeReply, Name: "VaultInitAgeReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
		{Name: "age_vault_id", Kind: proto.FieldUint32},
		{Name: "age_info_vault_id", Kind: proto.FieldUint32},
	}},
	MsgVaultNodeFindReply: {ID: MsgVaultNodeFindReply, Name: "VaultNodeFindReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
		{Name: "ids_len", Kind: proto.FieldUint32},
		{Name: "node_ids", Kind: proto.FieldVariableBuffer, CountFrom: "ids_len"},
	}},
	MsgVaultSaveNodeReply: {ID: MsgVaultSaveNodeReply, Name: "VaultSaveNodeReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
	}},
	MsgVaultAddNodeReply: {ID: MsgVaultAddNodeReply, Name: "VaultAddNodeReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
	}},
	MsgVaultRemoveNodeReply: {ID: MsgVaultRemoveNodeReply, Name: "VaultRemoveNodeReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
	}},
	MsgAgeReply: {ID: MsgAgeReply, Name: "AgeReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
		{Name: "age_mcp_id", Kind: proto.FieldUint32},
		{Name: "age_instance_id", Kind: proto.FieldUUID},
		{Name: "age_vault_id", Kind: proto.FieldUint32},
		{Name: "game_server_node", Kind: proto.FieldUint32},
	}},
	MsgFileListReply: {ID: MsgFileListReply, Name: "FileListReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
		{Name: "manifest_len", Kind: proto.FieldUint32},
		{Name: "manifest", Kind: proto.FieldVariableBuffer, CountFrom: "manifest_len"},
	}},
	MsgFileDownloadChunk: {ID: MsgFileDownloadChunk, Name: "FileDownloadChunk", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
		{Name: "total_size", Kind: proto.FieldUint32},
		{Name: "offset", Kind: proto.FieldUint32},
		{Name: "data_len", Kind: proto.FieldUint32},
		{Name: "file_data", Kind: proto.FieldVariableBuffer, CountFrom: "data_len"},
	}},
	MsgPropagateBufferReply: {ID: MsgPropagateBufferReply, Name: "PropagateBuffer", Fields: []proto.Field{
		{Name: "type_id", Kind: proto.FieldUint32},
		{Name: "buffer_len", Kind: proto.FieldUint32},
		{Name: "buffer", Kind: proto.FieldVariableBuffer, CountFrom: "buffer_len"},
	}},
	MsgKickedOff: {ID: MsgKickedOff, Name: "KickedOff", Fields: []proto.Field{
		{Name: "reason", Kind: proto.FieldInt32},
	}},
	MsgPublicAgeList: {ID: MsgPublicAgeList, Name: "PublicAgeList", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
		{Name: "ages_len", Kind: proto.FieldUint32},
		{Name: "ages", Kind: proto.FieldVariableBuffer, CountFrom: "ages_len"},
	}},
	MsgScoreCreateReply: {ID: MsgScoreCreateReply, Name: "ScoreCreateReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
		{Name: "score_id", Kind: proto.FieldUint32},
		{Name: "created_time", Kind: proto.FieldUint32},
	}},
	MsgScoreDeleteReply: {ID: MsgScoreDeleteReply, Name: "ScoreDeleteReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
	}},
	MsgScoreGetScoresReply: {ID: MsgScoreGetScoresReply, Name: "ScoreGetScoresReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
		{Name: "score_count", Kind: proto.FieldUint32},
		{Name: "buffer_len", Kind: proto.FieldUint32},
		{Name: "score_buffer", Kind: proto.FieldVariableBuffer, CountFrom: "buffer_len"},
	}},
	MsgScoreAddPointsReply: {ID: MsgScoreAddPointsReply, Name: "ScoreAddPointsReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
	}},
	MsgScoreTransferPointsReply: {ID: MsgScoreTransferPointsReply, Name: "ScoreTransferPointsReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
	}},
	MsgScoreSetPointsReply: {ID: MsgScoreSetPointsReply, Name: "ScoreSetPointsReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
	}},
	MsgScoreGetRanksReply: {ID: MsgScoreGetRanksReply, Name: "ScoreGetRanksReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
		{Name: "rank_count", Kind: proto.FieldUint32},
		{Name: "buffer_len", Kind: proto.FieldUint32},
		{Name: "rank_buffer", Kind: proto.FieldVariableBuffer, CountFrom: "buffer_len"},
	}},
	MsgAccountExistsReply: {ID: MsgAccountExistsReply, Name: "AccountExistsReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
		{Name: "exists", Kind: proto.FieldUint8},
	}},
	MsgScoreGetHighScoresReply: {ID: MsgScoreGetHighScoresReply, Name: "ScoreGetHighScoresReply", Fields: []proto.Field{
		{Name: "trans_id", Kind: proto.FieldUint32},
		{Name: "result", Kind: proto.FieldInt32},
		{Name: "score_count", Kind: proto.FieldUint32},
		{Name: "buffer_len", Kind: proto.FieldUint32},
		{Name: "score_buffer", Kind: proto.FieldVariableBuffer, CountFrom: "buffer_len"},
	}},
	MsgServerCaps: {ID: MsgServerCaps, Name: "ServerCaps", Fields: []proto.Field{
		{Name: "caps_len", Kind: proto.FieldUint32},
		{Name: "caps_buffer", Kind: proto.FieldVariableBuffer, CountFrom: "caps_len"},
	}},
}
