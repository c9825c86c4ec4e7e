package message

const (
	InvalidUser      = "Invalid username/password."
	InvalidInput     = "Invalid input."
	NotFound         = "Resource not found."
	Forbidden        = "You are not allowed to access this resource."
	EnvErrFmt        = "environment variable is not set: %s"
	ResetSent        = "A password reset link was sent to your email."
	ResetSuccess     = "Password reset successful."
	NoCredits        = "Insufficient credits. Purchase a credit pack to continue."
	UpstreamFailed   = "The generation service is unavailable. Please try again later."
	FmtErrStatusCode = "rec.Code = %d, want: %d"
)
