package portal

// State is the login flow's position
type State int

const (
	Idle State = iota
	Submitting
	AuthorizedFreshLogin
	AuthorizedTemporaryLogin
	Rejected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case AuthorizedFreshLogin:
		return "authorized_fresh_login"
	case AuthorizedTemporaryLogin:
		return "authorized_temporary_login"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// ChangeState is the password change sub-flow's position.
// It only moves once the login flow reaches AuthorizedTemporaryLogin.
type ChangeState int

const (
	ChangeIdle ChangeState = iota
	ChangeSubmitting
	ChangeSucceeded
	ChangeFailed
)

func (s ChangeState) String() string {
	switch s {
	case ChangeIdle:
		return "idle"
	case ChangeSubmitting:
		return "submitting"
	case ChangeSucceeded:
		return "succeeded"
	case ChangeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RevalidateResult reports what start-up revalidation decided
type RevalidateResult int

const (
	// LoginRequired means no usable session was found; the login form should render
	LoginRequired RevalidateResult = iota
	// Resumed means the stored session was confirmed and the user was sent to the portal
	Resumed
	// Cleared means the stored session was discarded
	Cleared
)

func (r RevalidateResult) String() string {
	switch r {
	case LoginRequired:
		return "login_required"
	case Resumed:
		return "resumed"
	case Cleared:
		return "cleared"
	default:
		return "unknown"
	}
}
