package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/samsunstoppable/luxury-minimalism-journal/internal/app"
	"github.com/samsunstoppable/luxury-minimalism-journal/internal/transport/http/response"
)

type EntryHandler struct {
	journalService *app.JournalService
}

type CreateEntryRequest struct {
	Title   string `json:"title" binding:"max=256"`
	Content string `json:"content" binding:"required"`
	Date    string `json:"date" binding:"omitempty,len=10"`
}

type UpdateEntryRequest struct {
	Title   string `json:"title" binding:"max=256"`
	Content string `json:"content" binding:"required"`
}

func NewEntryHandler(journalService *app.JournalService) *EntryHandler {
	return &EntryHandler{journalService: journalService}
}

func (h *EntryHandler) Create(c *gin.Context) {
	user, ok := getUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	entry, err := h.journalService.CreateEntry(app.CreateEntryInput{
		User:    user,
		Title:   req.Title,
		Content: req.Content,
		Date:    req.Date,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create entry failed")
		}
		return
	}

	response.OK(c, entry)
}

func (h *EntryHandler) List(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	entries, err := h.journalService.ListEntries(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list entries failed")
		return
	}

	response.OK(c, entries)
}

func (h *EntryHandler) Get(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	entryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	entry, err := h.journalService.GetEntry(userID, entryID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrEntryNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get entry failed")
		}
		return
	}

	response.OK(c, entry)
}

func (h *EntryHandler) Update(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	entryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	entry, err := h.journalService.UpdateEntry(userID, entryID, req.Title, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrEntryNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "update entry failed")
		}
		return
	}

	response.OK(c, entry)
}

func (h *EntryHandler) Delete(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	entryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.journalService.DeleteEntry(userID, entryID); err != nil {
		switch {
		case errors.Is(err, app.ErrEntryNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete entry failed")
		}
		return
	}

	response.OK(c, gin.H{"deleted_entry_id": entryID})
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id64 == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id64), true
}
