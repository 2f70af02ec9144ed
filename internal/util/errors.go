package util

// ErrPublic is a validation error whose message is safe to show
// verbatim to the end user.
type ErrPublic string

func (e ErrPublic) Error() string {
	return string(e)
}
