package v1

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/yomu-app/yomu/http/response"
	"github.com/yomu-app/yomu/log"
	"github.com/yomu-app/yomu/model"
	"github.com/yomu-app/yomu/validator"
)

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	create := &model.UserCreateRequest{}
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	if err := validator.ValidateUserCreateRequest(h.store, create); err != nil {
		log.Error("Failed to validate user create request", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(create.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to generate password hash")
		response.ServerError(w, r, err)
		return
	}

	role := model.RoleUser
	if create.IsAdmin {
		role = model.RoleAdmin
	}

	newUser, err := h.store.CreateUser(&model.User{
		Username:     create.Username,
		Role:         role,
		Email:        create.Email,
		Nickname:     create.Nickname,
		AvatarURL:    create.AvatarURL,
		PasswordHash: string(passwordHash),
	})
	if err != nil {
		log.Error("Failed to create user", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	h.store.UserCache.Store(newUser.ID, newUser)

	response.Created(w, r, response.UserResponse(newUser))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(&model.FindUser{})
	if err != nil {
		log.Error("Error listing users", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, response.UserListResponse(users))
}
