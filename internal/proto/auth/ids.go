// Package auth implements the Auth channel's message tables, per-connection
// session state, and handlers (spec.md §4.D "Auth (10)"): client
// registration and login, account/player management, vault node CRUD,
// age resolution, the patcher's secure file list/download, and score
// bookkeeping. Grounded on original_source/src/auth_srv/messages.rs's
// CliToAuth/AuthToCli enums for the wire catalog and server.rs for which
// operations are real versus account-administration stubs this server
// (like the original) does not implement.
package auth

// Client -> server message ids (original_source ClientMsgId). Ids the
// real client never sends appear only as "-- unused" comments, have no
// constant, and are absent from RequestTable; decoding one is a Protocol error, matching
// original_source's own "never defined in the client" rejections.
const (
	MsgPingRequest               uint16 = 0
	MsgClientRegisterRequest     uint16 = 1
	MsgClientSetCCRLevel         uint16 = 2
	MsgAcctLoginRequest          uint16 = 3
	// 4 AcctSetEulaVersion -- unused
	// 5 AcctSetDataRequest -- unused
	MsgAcctSetPlayerRequest      uint16 = 6
	MsgAcctCreateRequest         uint16 = 7
	MsgAcctChangePasswordRequest uint16 = 8
	MsgAcctSetRolesRequest       uint16 = 9
	MsgAcctSetBillingTypeRequest uint16 = 10
	MsgAcctActivateRequest       uint16 = 11
	MsgAcctCreateFromKeyRequest  uint16 = 12
	MsgPlayerDeleteRequest       uint16 = 13
	// 14 PlayerUndeleteRequest -- unused
	// 15 PlayerSelectRequest -- unused
	// 16 PlayerRenameRequest -- unused
	MsgPlayerCreateRequest uint16 = 17
	// 18 PlayerSetStatus -- unused
	// 19 PlayerChat -- unused
	MsgUpgradeVisitorRequest     uint16 = 20
	MsgSetPlayerBanStatusRequest uint16 = 21
	MsgKickPlayer                uint16 = 22
	MsgChangePlayerNameRequest   uint16 = 23
	MsgSendFriendInviteRequest   uint16 = 24
	MsgVaultNodeCreate           uint16 = 25
	MsgVaultNodeFetch            uint16 = 26
	MsgVaultNodeSave             uint16 = 27
	MsgVaultNodeDelete           uint16 = 28
	MsgVaultNodeAdd              uint16 = 29
	MsgVaultNodeRemove           uint16 = 30
	MsgVaultFetchNodeRefs        uint16 = 31
	MsgVaultInitAgeRequest       uint16 = 32
	MsgVaultNodeFind             uint16 = 33
	MsgVaultSetSeen              uint16 = 34
	MsgVaultSendNode             uint16 = 35
	MsgAgeRequest                uint16 = 36
	MsgFileListRequest           uint16 = 37
	MsgFileDownloadRequest       uint16 = 38
	MsgFileDownloadChunkAck      uint16 = 39
	MsgPropagateBuffer           uint16 = 40
	MsgGetPublicAgeList          uint16 = 41
	MsgSetAgePublic              uint16 = 42
	MsgLogPythonTraceback        uint16 = 43
	MsgLogStackDump              uint16 = 44
	MsgLogClientDebuggerConnect  uint16 = 45
	MsgScoreCreate               uint16 = 46
	MsgScoreDelete               uint16 = 47
	MsgScoreGetScores            uint16 = 48
	MsgScoreAddPoints            uint16 = 49
	MsgScoreTransferPoints       uint16 = 50
	MsgScoreSetPoints            uint16 = 51
	MsgScoreGetRanks             uint16 = 52
	MsgAccountExistsRequest      uint16 = 53

	// DirtSand-extended messages, carried for patcher compatibility.
	MsgScoreGetHighScores uint16 = 0x1001
)

// Server -> client message ids (original_source ServerMsgId).
const (
	MsgPingReply uint16 = 0
	// 1 ServerAddr -- this server never relocates a client mid-session
	MsgNotifyNewBuild  uint16 = 2
	MsgClientRegisterReply uint16 = 3
	MsgAcctLoginReply      uint16 = 4
	// 5 AcctData -- unused
	MsgAcctPlayerInfo       uint16 = 6
	MsgAcctSetPlayerReply   uint16 = 7
	MsgAcctCreateReply      uint16 = 8
	MsgAcctChangePasswordReply uint16 = 9
	MsgAcctSetRolesReply       uint16 = 10
	MsgAcctSetBillingTypeReply uint16 = 11
	MsgAcctActivateReply       uint16 = 12
	MsgAcctCreateFromKeyReply  uint16 = 13
	// 14 PlayerList -- unused
	// 15 PlayerChat -- unused
	MsgPlayerCreateReply       uint16 = 16
	MsgPlayerDeleteReply       uint16 = 17
	MsgUpgradeVisitorReply     uint16 = 18
	MsgSetPlayerBanStatusReply uint16 = 19
	MsgChangePlayerNameReply   uint16 = 20
	MsgSendFriendInviteReply   uint16 = 21
	// 22 FriendNotify -- unused
	MsgVaultNodeCreated      uint16 = 23
	MsgVaultNodeFetched      uint16 = 24
	MsgVaultNodeChanged      uint16 = 25
	MsgVaultNodeDeleted      uint16 = 26
	MsgVaultNodeAdded        uint16 = 27
	MsgVaultNodeRemoved      uint16 = 28
	MsgVaultNodeRefsFetched  uint16 = 29
	MsgVaultInitAgeReply     uint16 = 30
	MsgVaultNodeFindReply    uint16 = 31
	MsgVaultSaveNodeReply    uint16 = 32
	MsgVaultAddNodeReply     uint16 = 33
	MsgVaultRemoveNodeReply  uint16 = 34
	MsgAgeReply              uint16 = 35
	MsgFileListReply         uint16 = 36
	MsgFileDownloadChunk     uint16 = 37
	MsgPropagateBufferReply  uint16 = 38
	MsgKickedOff             uint16 = 39
	MsgPublicAgeList         uint16 = 40
	MsgScoreCreateReply      uint16 = 41
	MsgScoreDeleteReply      uint16 = 42
	MsgScoreGetScoresReply   uint16 = 43
	MsgScoreAddPointsReply   uint16 = 44
	MsgScoreTransferPointsReply uint16 = 45
	MsgScoreSetPointsReply      uint16 = 46
	MsgScoreGetRanksReply       uint16 = 47
	MsgAccountExistsReply       uint16 = 48

	MsgScoreGetHighScoresReply uint16 = 0x1001
	MsgServerCaps              uint16 = 0x1002
)
