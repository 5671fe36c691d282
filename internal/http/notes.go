package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tazhibayda/notes-service/internal/domain"
	"github.com/tazhibayda/notes-service/internal/log"
	"github.com/tazhibayda/notes-service/internal/queue"
	"github.com/tazhibayda/notes-service/internal/repo"
)

func (h *Handler) author(c *gin.Context) (primitive.ObjectID, bool) {
	au := c.MustGet(authUserKey).(AuthUser)
	id, err := primitive.ObjectIDFromHex(au.UID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid subject"})
		return primitive.NilObjectID, false
	}
	return id, true
}

type noteReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CreateNote godoc
// @Summary Create note
// @Tags notes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body noteReq true "title, description"
// @Success 201 {object} domain.Note
// @Failure 400 {object} map[string]string
// @Router /notes [post]
func (h *Handler) CreateNote(c *gin.Context) {
	author, ok := h.author(c)
	if !ok {
		return
	}
	var in noteReq
	if err := c.ShouldBindJSON(&in); err != nil ||
		strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and description required"})
		return
	}
	n := &domain.Note{
		Author:      author,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
	}
	if err := h.Notes.CreateNote(c.Request.Context(), n); err != nil {
		log.WithDD(c.Request.Context(), log.L()).Error("note create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	go h.Events.Publish(c.Request.Context(), queue.ExchangeNotes, "note.created",
		queue.NoteCreated{NoteID: n.ID, Author: author}, c.GetString(requestIDKey))

	c.JSON(http.StatusCreated, n)
}

// ListNotes godoc
// @Summary List own notes
// @Tags notes
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.Note
// @Router /notes [get]
func (h *Handler) ListNotes(c *gin.Context) {
	author, ok := h.author(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))

	items, err := h.Notes.ListNotesByAuthor(c.Request.Context(), author, repo.ListParams{Limit: limit, Skip: skip})
	if err != nil {
		log.WithDD(c.Request.Context(), log.L()).Error("note list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetNote godoc
// @Summary Get one note
// @Tags notes
// @Security BearerAuth
// @Param id path string true "note id"
// @Produce json
// @Success 200 {object} domain.Note
// @Failure 404 {object} map[string]string
// @Router /notes/{id} [get]
func (h *Handler) GetNote(c *gin.Context) {
	author, ok := h.author(c)
	if !ok {
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
		return
	}
	n, err := h.Notes.FindNoteByID(c.Request.Context(), author, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if n == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
		return
	}
	c.JSON(http.StatusOK, n)
}

type noteUpdateReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// UpdateNote godoc
// @Summary Update note
// @Tags notes
// @Security BearerAuth
// @Param id path string true "note id"
// @Param payload body noteUpdateReq true "fields to update"
// @Produce json
// @Success 200 {object} domain.Note
// @Failure 404 {object} map[string]string
// @Router /notes/{id} [patch]
func (h *Handler) UpdateNote(c *gin.Context) {
	author, ok := h.author(c)
	if !ok {
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
		return
	}
	var in noteUpdateReq
	if err := c.ShouldBindJSON(&in); err != nil || (in.Title == nil && in.Description == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}
	n, err := h.Notes.UpdateNote(c.Request.Context(), author, id, repo.NoteUpdate{Title: in.Title, Description: in.Description})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if n == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
		return
	}
	c.JSON(http.StatusOK, n)
}

// DeleteNote godoc
// @Summary Delete note
// @Tags notes
// @Security BearerAuth
// @Param id path string true "note id"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /notes/{id} [delete]
func (h *Handler) DeleteNote(c *gin.Context) {
	author, ok := h.author(c)
	if !ok {
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
		return
	}
	deleted, err := h.Notes.DeleteNote(c.Request.Context(), author, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
