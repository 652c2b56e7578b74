package handlers

import (
	"encoding/gob"
	"log/slog"
	"net/http"

	"rebuyrnot/internal/middleware"
	"rebuyrnot/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	sessionVoted          = "voted"
	sessionOnboardingSeen = "onboarding_seen"

	// cookie sessions cap out at 4KB, keep only the most recent markers
	maxVotedMarkers = 50
)

// votedMarker is one "already voted" hint kept in the session, oldest first.
type votedMarker struct {
	ProductID string
	VoteType  string
}

func init() {
	// cookie store gob-encodes session values
	gob.Register([]votedMarker{})
}

func loadMarkers(session sessions.Session) []votedMarker {
	markers, _ := session.Get(sessionVoted).([]votedMarker)
	return markers
}

// votedMarkers returns the product id -> vote type map kept in the session.
func votedMarkers(session sessions.Session) map[string]string {
	markers := loadMarkers(session)
	out := make(map[string]string, len(markers))
	for _, m := range markers {
		out[m.ProductID] = m.VoteType
	}
	return out
}

// addMarker appends or refreshes a marker, evicting the oldest past the cap.
func addMarker(markers []votedMarker, productID, voteType string) []votedMarker {
	kept := make([]votedMarker, 0, len(markers)+1)
	for _, m := range markers {
		if m.ProductID != productID {
			kept = append(kept, m)
		}
	}
	kept = append(kept, votedMarker{ProductID: productID, VoteType: voteType})
	if over := len(kept) - maxVotedMarkers; over > 0 {
		kept = kept[over:]
	}
	return kept
}

// markVoted remembers the vote client-side. Advisory only.
func markVoted(c *gin.Context, productID string, voteType models.VoteType) {
	session := sessions.Default(c)
	session.Set(sessionVoted, addMarker(loadMarkers(session), productID, string(voteType)))
	if err := session.Save(); err != nil {
		slog.Warn("failed to save vote marker", "product", productID, "error", err)
	}
}

type SessionHandler struct {
	accounts ProfileLoader
}

func NewSessionHandler(accounts ProfileLoader) *SessionHandler {
	return &SessionHandler{accounts: accounts}
}

// Get returns what the client needs to restore its state.
func (h *SessionHandler) Get(c *gin.Context) {
	session := sessions.Default(c)
	voter := middleware.CurrentVoter(c)
	seen, _ := session.Get(sessionOnboardingSeen).(bool)

	resp := gin.H{
		"voter_id":        voter.ID,
		"anonymous":       voter.Anonymous(),
		"onboarding_seen": seen,
		"voted":           votedMarkers(session),
		"user":            nil,
	}
	if uid := middleware.CurrentUserID(c); uid != "" {
		if profile, err := h.accounts.Profile(c.Request.Context(), uid); err == nil {
			resp["user"] = profile
		}
	}
	c.JSON(http.StatusOK, resp)
}

// MarkOnboarding records that the onboarding popup was shown.
func (h *SessionHandler) MarkOnboarding(c *gin.Context) {
	session := sessions.Default(c)
	session.Set(sessionOnboardingSeen, true)
	if err := session.Save(); err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"onboarding_seen": true})
}
