package session

// Code is a server-issued business error code carried inside the error
// envelope. The known values mirror the server's error catalog; unknown
// codes are preserved verbatim so nothing is lost in logs.
type Code string

const (
	// CodeMemberNotFound: no account exists for the credential.
	CodeMemberNotFound Code = "R0001"
	// CodeAlreadyRegistered: the provider account is already linked.
	CodeAlreadyRegistered Code = "R0002"
	// CodeNicknameDuplicated: the requested nickname is taken.
	CodeNicknameDuplicated Code = "R0003"
	// CodeDeactivatedAccount: the account was deleted within the
	// reactivation grace period.
	CodeDeactivatedAccount Code = "R0004"
	// CodeInvalidToken: the bearer token was rejected.
	CodeInvalidToken Code = "A0001"
	// CodeTokenExpired: the bearer token has expired.
	CodeTokenExpired Code = "A0002"
)

// IsKnown reports whether the code is part of the known catalog.
func (c Code) IsKnown() bool {
	switch c {
	case CodeMemberNotFound, CodeAlreadyRegistered, CodeNicknameDuplicated,
		CodeDeactivatedAccount, CodeInvalidToken, CodeTokenExpired:
		return true
	default:
		return false
	}
}

// IsAuthFailure reports whether the code means the current credentials
// are no longer usable and the session should fall back to guest.
func (c Code) IsAuthFailure() bool {
	return c == CodeInvalidToken || c == CodeTokenExpired
}
