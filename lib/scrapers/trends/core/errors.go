package core

import (
	"errors"
)

// SignInMessage is the body the export endpoint answers with when the
// session is not logged in.
const SignInMessage = "You must be signed in to export data from Google Trends"

var ErrLoginFailed = errors.New("failed to login to your account")

// SignInRequiredError is returned by Session.Fetch when the site refuses an
// export because the session is not authenticated.
type SignInRequiredError struct {
	Message string
}

func (e *SignInRequiredError) Error() string {
	return "trends: sign in required: " + e.Message
}
