// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Client Messages

// Every authentication failure of one kind shares one message so a response
// never reveals which check failed.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgUserNotFound       = "User not found"
	MsgInvalidRefresh     = "Invalid refresh token"
	MsgRevokedRefresh     = "Refresh token has been revoked"
	MsgInvalidLogout      = "Invalid token"
	MsgInvalidResetToken  = "Reset token is invalid or expired"
)

// # Response Messages

const (
	MsgLoginSucceeded    = "Login successful"
	MsgRefreshSucceeded  = "Token refreshed"
	MsgLogoutSucceeded   = "Logout successful"
	MsgResetRequested    = "If this email is registered, a reset link has been sent."
	MsgPasswordResetDone = "Password updated successfully"
)
