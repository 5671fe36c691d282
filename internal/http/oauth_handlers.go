package http

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tazhibayda/notes-service/internal/log"
	"github.com/tazhibayda/notes-service/internal/metrics"
	"github.com/tazhibayda/notes-service/internal/queue"
	"github.com/tazhibayda/notes-service/internal/service"
)

// oauthStart redirects the browser into the provider's consent flow with an
// HMAC-signed state.
func (h *Handler) oauthStart(name string) gin.HandlerFunc {
	p := h.Providers[name]
	return func(c *gin.Context) {
		state := h.State.Sign(uuid.NewString())
		c.Redirect(http.StatusFound, p.AuthURL(state))
	}
}

// oauthCallback runs the callback state machine: received profile →
// resolved → token issued → session established. Any failure redirects to
// the login page with a bare error flag; provider and store detail stays in
// the logs.
func (h *Handler) oauthCallback(name string) gin.HandlerFunc {
	p := h.Providers[name]
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		l := log.WithDD(ctx, log.L(), zap.String("provider", name))

		if errParam := c.Query("error"); errParam != "" {
			l.Warn("provider returned error", zap.String("error", errParam))
			h.failLogin(c, name)
			return
		}
		if !h.State.Verify(c.Query("state")) {
			l.Warn("state verification failed")
			h.failLogin(c, name)
			return
		}
		code := c.Query("code")
		if code == "" {
			h.failLogin(c, name)
			return
		}

		profile, err := p.FetchProfile(ctx, code)
		if err != nil {
			l.Error("profile fetch failed", zap.Error(err))
			h.failLogin(c, name)
			return
		}

		u, out, err := h.Auth.ResolveOAuth(ctx, profile)
		if err != nil {
			l.Error("resolution failed", zap.Error(err))
			h.failLogin(c, name)
			return
		}

		tok, err := h.Issuer.Issue(u.ID.Hex(), u.Email)
		if err != nil {
			l.Error("token issue failed", zap.Error(err))
			h.failLogin(c, name)
			return
		}
		metrics.LoginsTotal.WithLabelValues(name, "ok").Inc()

		reqID := c.GetString(requestIDKey)
		switch out {
		case service.OutcomeCreated:
			go h.Events.Publish(ctx, queue.ExchangeAuth, "user.registered",
				queue.UserRegistered{UserID: u.ID, Email: u.Email, Name: u.Username}, reqID)
		case service.OutcomeLinked:
			go h.Events.Publish(ctx, queue.ExchangeAuth, "provider.linked",
				queue.ProviderLinked{UserID: u.ID, Provider: name}, reqID)
		}
		go h.Events.Publish(ctx, queue.ExchangeAuth, "user.loggedin",
			queue.UserLoggedIn{UserID: u.ID, Email: u.Email, Method: name}, reqID)

		h.establishSession(c, tok, u)
	}
}

// establishSession hands the issued token to the browser according to the
// configured transport. Cookie mode keeps the redirect free of sensitive
// data; query mode embeds token and user for frontends that extract them
// from the URL, at the cost of leaking both into history and referrers.
func (h *Handler) establishSession(c *gin.Context, tok string, u any) {
	if h.SessionTransport == "query" {
		uj, _ := json.Marshal(u)
		c.Redirect(http.StatusFound,
			h.FrontendURL+"/login?token="+url.QueryEscape(tok)+"&user="+url.QueryEscape(string(uj)))
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("token", tok, int(h.Issuer.TTL().Seconds()), "/", h.CookieDomain, h.CookieSecure, true)
	c.Redirect(http.StatusFound, h.FrontendURL+"/login?success=true")
}

func (h *Handler) failLogin(c *gin.Context, provider string) {
	metrics.LoginsTotal.WithLabelValues(provider, "error").Inc()
	c.Redirect(http.StatusFound, h.FrontendURL+"/login?error=oauth_failed")
}
