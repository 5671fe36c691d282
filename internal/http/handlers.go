package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tazhibayda/notes-service/internal/domain"
	"github.com/tazhibayda/notes-service/internal/log"
	"github.com/tazhibayda/notes-service/internal/metrics"
	"github.com/tazhibayda/notes-service/internal/oauth"
	"github.com/tazhibayda/notes-service/internal/queue"
	"github.com/tazhibayda/notes-service/internal/repo"
	"github.com/tazhibayda/notes-service/internal/security"
	"github.com/tazhibayda/notes-service/internal/service"
)

// NotesStore is the slice of the store the note handlers need; *repo.Store
// implements it, tests plug a fake.
type NotesStore interface {
	CreateNote(ctx context.Context, n *domain.Note) error
	ListNotesByAuthor(ctx context.Context, author primitive.ObjectID, p repo.ListParams) ([]domain.Note, error)
	FindNoteByID(ctx context.Context, author, id primitive.ObjectID) (*domain.Note, error)
	UpdateNote(ctx context.Context, author, id primitive.ObjectID, upd repo.NoteUpdate) (*domain.Note, error)
	DeleteNote(ctx context.Context, author, id primitive.ObjectID) (bool, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Auth      *service.Auth
	Notes     NotesStore
	Issuer    *security.Issuer
	Providers map[string]oauth.Provider
	State     *oauth.StateSigner
	Events    queue.Publisher
	Redis     *repo.Redis
	Health    Pinger

	RateLimitPerMin  int
	FrontendURL      string
	SessionTransport string // "cookie" | "query"
	CookieDomain     string
	CookieSecure     bool
}

func NewHandler(auth *service.Auth, notes NotesStore, iss *security.Issuer, events queue.Publisher) *Handler {
	return &Handler{
		Auth:             auth,
		Notes:            notes,
		Issuer:           iss,
		Providers:        map[string]oauth.Provider{},
		Events:           events,
		SessionTransport: "cookie",
	}
}

func (h *Handler) AddProvider(p oauth.Provider) {
	h.Providers[p.Name()] = p
}

func (h *Handler) cookieMode() bool { return h.SessionTransport == "cookie" }

type signupReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type authResp struct {
	AccessToken string       `json:"access_token"`
	User        *domain.User `json:"user"`
}

// Signup godoc
// @Summary Register with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body signupReq true "signup"
// @Success 201 {object} authResp
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var in signupReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if !strings.Contains(in.Email, "@") || len(in.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email or weak password"})
		return
	}

	u, err := h.Auth.SignUp(c.Request.Context(), in.Email, in.Password, in.Username)
	if err != nil {
		var conflict *service.ConflictError
		if errors.As(err, &conflict) {
			metrics.SignupsTotal.WithLabelValues("conflict").Inc()
			c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
			return
		}
		log.WithDD(c.Request.Context(), log.L()).Error("signup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "signup failed"})
		return
	}
	metrics.SignupsTotal.WithLabelValues("ok").Inc()

	tok, err := h.Issuer.Issue(u.ID.Hex(), u.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}

	go h.Events.Publish(c.Request.Context(), queue.ExchangeAuth, "user.registered",
		queue.UserRegistered{UserID: u.ID, Email: u.Email, Name: u.Username},
		c.GetString(requestIDKey))

	c.JSON(http.StatusCreated, authResp{AccessToken: tok, User: u})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login godoc
// @Summary Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginReq true "login"
// @Success 200 {object} authResp
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var in loginReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	u, err := h.Auth.ValidateLocal(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		var social *service.SocialLoginError
		switch {
		case errors.As(err, &social):
			metrics.LoginsTotal.WithLabelValues("local", "rejected").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"error": social.Error()})
		case errors.Is(err, service.ErrInvalidCredentials):
			metrics.LoginsTotal.WithLabelValues("local", "rejected").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		default:
			metrics.LoginsTotal.WithLabelValues("local", "error").Inc()
			log.WithDD(c.Request.Context(), log.L()).Error("login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		}
		return
	}

	tok, err := h.Issuer.Issue(u.ID.Hex(), u.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}
	metrics.LoginsTotal.WithLabelValues("local", "ok").Inc()

	go h.Events.Publish(c.Request.Context(), queue.ExchangeAuth, "user.loggedin",
		queue.UserLoggedIn{UserID: u.ID, Email: u.Email, Method: "local"},
		c.GetString(requestIDKey))

	c.JSON(http.StatusOK, authResp{AccessToken: tok, User: u})
}

// Profile godoc
// @Summary Current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401 {object} map[string]string
// @Router /auth/profile [get]
func (h *Handler) Profile(c *gin.Context) {
	au := c.MustGet(authUserKey).(AuthUser)

	u, err := h.Auth.Profile(c.Request.Context(), au.UID)
	if err != nil {
		log.WithDD(c.Request.Context(), log.L()).Error("profile lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) Healthz(c *gin.Context) {
	if h.Health != nil {
		if err := h.Health.Ping(c.Request.Context()); err != nil {
			log.WithDD(c.Request.Context(), log.L()).Error("health ping failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
