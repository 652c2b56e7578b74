package middleware

import (
	"log/slog"

	"rebuyrnot/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	SessionFingerprint = "fingerprint"
	FingerprintHeader  = "X-Voter-Fingerprint"
	VoterKey           = "voter"
)

// Identity resolves who is voting for every request. Anonymous visitors get a
// fingerprint kept in their session cookie; a well-formed X-Voter-Fingerprint
// header takes precedence for clients that store it themselves.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		fingerprint := c.GetHeader(FingerprintHeader)
		if !services.ValidFingerprint(fingerprint) {
			fingerprint, _ = session.Get(SessionFingerprint).(string)
		}

		voter, fresh := services.ResolveVoter(CurrentUserID(c), fingerprint)
		if fresh {
			session.Set(SessionFingerprint, voter.Fingerprint())
			if err := session.Save(); err != nil {
				// 存不下也能继续, 下次请求会换一个指纹
				slog.Warn("failed to persist fingerprint", "error", err)
			}
		}

		c.Set(VoterKey, voter)
		c.Next()
	}
}

// CurrentVoter returns the voter resolved by Identity.
func CurrentVoter(c *gin.Context) services.Voter {
	if v, ok := c.Get(VoterKey); ok {
		if voter, ok := v.(services.Voter); ok {
			return voter
		}
	}
	voter, _ := services.ResolveVoter(CurrentUserID(c), "")
	return voter
}
