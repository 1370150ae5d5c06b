package auth

// netResult is the Auth channel's reply status code (spec.md §4.D
// "every reply begins with a reply code"), carried as an i32 field
// named "result" on essentially every AuthToCli reply. Grounded on
// original_source/src/netcli.rs's NetResultCode enum; only the
// subset this server actually produces is named here.
type netResult int32

const (
	netSuccess             netResult = 0
	netInternalError       netResult = 1
	netAgeNotFound         netResult = 4
	netFileNotFound        netResult = 7
	netAccountAlreadyExists netResult = 11
	netPlayerAlreadyExists  netResult = 12
	netAccountNotFound      netResult = 13
	netPlayerNotFound       netResult = 14
	netInvalidParameter     netResult = 15
	netVaultNodeNotFound    netResult = 18
	netMaxPlayersOnAcct     netResult = 19
	netAuthenticationFailed netResult = 20
	netNotSupported         netResult = 29
	netServiceForbidden     netResult = 30
)
