package handlers

import (
	"context"
	"net/http"

	"friends-server/middleware"
	"friends-server/models"

	"github.com/gorilla/mux"
)

type FriendService interface {
	Register(ctx context.Context, in models.RegisterInput) (models.Friend, error)
	Update(ctx context.Context, email string, patch models.FriendPatch) (models.UpdateResult, error)
	Remove(ctx context.Context, email string) (bool, error)
	Get(ctx context.Context, emailOrID string) (models.Friend, error)
	ListAll(ctx context.Context) ([]models.Friend, error)
}

type FriendHandler struct {
	friends FriendService
}

type RegisterResponse struct {
	ID  string `json:"id"`
	Msg string `json:"msg"`
}

func NewFriendHandler(friends FriendService) *FriendHandler {
	return &FriendHandler{friends: friends}
}

func (h *FriendHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input models.RegisterInput
	if err := decodeJSON(w, r, &input); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	created, err := h.friends.Register(r.Context(), input)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, RegisterResponse{
		ID:  created.ID,
		Msg: "The user " + created.FirstName + " has been registered",
	})
}

func (h *FriendHandler) All(w http.ResponseWriter, r *http.Request) {
	friends, err := h.friends.ListAll(r.Context())
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	dtos := make([]models.FriendDTO, 0, len(friends))
	for _, f := range friends {
		dtos = append(dtos, f.DTO())
	}
	middleware.WriteJSON(w, http.StatusOK, dtos)
}

func (h *FriendHandler) Me(w http.ResponseWriter, r *http.Request) {
	email, err := selfEmail(r)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	me, err := h.friends.Get(r.Context(), email)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, me)
}

// EditMe answers with the number of modified records.
func (h *FriendHandler) EditMe(w http.ResponseWriter, r *http.Request) {
	email, err := selfEmail(r)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	var patch models.FriendPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	patch.Email = email

	res, err := h.friends.Update(r.Context(), email, patch)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, res.Modified)
}

func (h *FriendHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	email, err := selfEmail(r)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	removed, err := h.friends.Remove(r.Context(), email)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, removed)
}

func (h *FriendHandler) FindUser(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	friend, err := h.friends.Get(r.Context(), mux.Vars(r)["email"])
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, friend.DTO())
}

// EditAny lets an admin edit the friend named in the path.
func (h *FriendHandler) EditAny(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	email := mux.Vars(r)["email"]
	var patch models.FriendPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	patch.Email = email

	res, err := h.friends.Update(r.Context(), email, patch)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, res)
}
