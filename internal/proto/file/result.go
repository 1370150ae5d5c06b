package file

// fileResult mirrors the subset of original_source's NetResultCode the
// File channel's replies use (same numbering as internal/proto/auth's
// netResult — both channels share one result-code enum on the wire).
type fileResult uint32

const (
	fileResultSuccess      fileResult = 0
	fileResultInternalErr  fileResult = 1
	fileResultFileNotFound fileResult = 7
)
