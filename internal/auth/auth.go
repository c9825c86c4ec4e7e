package auth

import (
	"github.com/ferdiebergado/storyboard/internal/platform/db"
	"github.com/ferdiebergado/storyboard/internal/platform/email"
	"github.com/ferdiebergado/storyboard/internal/platform/hash"
	"github.com/ferdiebergado/storyboard/internal/platform/jwt"
)

// Token audiences. A token is only accepted where its audience matches.
const (
	AudienceAccess  = "access"
	AudienceRefresh = "refresh"
	AudienceVerify  = "verify-email"
	AudienceReset   = "reset-password"
)

// Providers are the platform services the auth service depends on.
type Providers struct {
	Hasher   hash.Hasher
	Signer   jwt.Signer
	Mailer   email.Mailer
	TxMgr    db.TxManager
	Crediter Crediter
}
