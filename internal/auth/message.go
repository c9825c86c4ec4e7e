package auth

const (
	MsgLoggedIn         = "Logged in."
	MsgLoggedOut        = "Logged out."
	MsgRefreshed        = "Token refreshed."
	MsgVerifySuccess    = "Verification complete. You can now login."
	MsgRegisterSuccess  = "Thank you for registering. A verification link was sent to your email."
	MsgUserExists       = "User already exists."
	MsgPasswordMismatch = "Passwords do not match."
)
