package handler

import (
	"net/http"

	"stockhub/internal/middleware"
	"stockhub/internal/service"
	"stockhub/internal/softdelete"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// creator is a create payload that builds the row it describes.
type creator[PT any] interface {
	ToModel(actor uuid.UUID) PT
}

// patcher is a partial-update payload.
type patcher interface {
	Fields() map[string]interface{}
}

// ReferenceHandler serves the CRUD routes of one reference family. C and U are
// the create and update payload types.
type ReferenceHandler[T any, PT interface {
	*T
	softdelete.Model
}, C creator[PT], U patcher] struct {
	svc *service.ReferenceService[T, PT]
}

func NewReferenceHandler[T any, PT interface {
	*T
	softdelete.Model
}, C creator[PT], U patcher](svc *service.ReferenceService[T, PT]) *ReferenceHandler[T, PT, C, U] {
	return &ReferenceHandler[T, PT, C, U]{svc: svc}
}

// Register mounts the family's routes on g. Reads are open to every role;
// writes require one of writers.
func (h *ReferenceHandler[T, PT, C, U]) Register(g *gin.RouterGroup, writers ...string) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	w := g.Group("", middleware.RequireRole(writers...))
	w.POST("", h.Create)
	w.PATCH("/:id", h.Update)
	w.DELETE("/:id", h.Delete)
	w.POST("/:id/restore", h.Restore)
}

func (h *ReferenceHandler[T, PT, C, U]) Create(c *gin.Context) {
	var req C
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req.ToModel(middleware.Actor(c)))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ReferenceHandler[T, PT, C, U]) List(c *gin.Context) {
	opts, ok := listOptions(c)
	if !ok {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get also finds deleted rows so clients can render historical references.
func (h *ReferenceHandler[T, PT, C, U]) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), softdelete.Options{IncludeDeleted: true}, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReferenceHandler[T, PT, C, U]) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req U
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req.Fields())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReferenceHandler[T, PT, C, U]) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReferenceHandler[T, PT, C, U]) Restore(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Restore(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
