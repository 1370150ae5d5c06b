package game

// gameResult mirrors the subset of the Auth channel's netResult
// numbering this channel's JoinAgeReply needs (the Auth and Game
// channels share one result-code enum on the wire, per
// original_source/src/netcli.rs's NetResultCode).
type gameResult int32

const (
	gameResultSuccess   gameResult = 0
	gameResultInternal  gameResult = 1
	gameResultAgeNotFound gameResult = 4
)
