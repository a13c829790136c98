// Package gate decides whether a requested view may render for the current
// session state. It is a pure function of its inputs; callers re-evaluate it
// on every navigation and on every authentication change, so a logout while
// a protected view is open redirects immediately.
package gate

// View identifies a navigable screen.
type View string

const (
	SignIn         View = "sign-in"
	Register       View = "register"
	ForgotPassword View = "forgot-password"
	ResetPassword  View = "reset-password"
	Home           View = "home"
)

// Decision is the outcome of guarding one view request.
type Decision int

const (
	Render Decision = iota
	RedirectToSignIn
)

// Protected reports whether a view requires an authenticated session.
// Views not named here are protected, so new screens start locked.
func Protected(view View) bool {
	switch view {
	case SignIn, Register, ForgotPassword, ResetPassword:
		return false
	default:
		return true
	}
}

// Guard decides whether view may render given the session state.
func Guard(view View, authenticated bool) Decision {
	if !authenticated && Protected(view) {
		return RedirectToSignIn
	}
	return Render
}
