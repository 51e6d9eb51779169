package validator // import "github.com/yomu-app/yomu/validator"

import (
	"github.com/pkg/errors"

	"github.com/yomu-app/yomu/model"
	"github.com/yomu-app/yomu/store"
	"github.com/yomu-app/yomu/util"
)

func ValidateUserCreateRequest(s *store.Store, user *model.UserCreateRequest) error {
	if user == nil {
		return errors.New("user is nil")
	}
	if user.Username == "" {
		return errors.New("username is empty")
	}
	if !util.UIDMatcher.MatchString(user.Username) {
		return errors.New("username is invalid")
	}
	if user.Email != "" && !util.ValidateEmail(user.Email) {
		return errors.New("email is invalid")
	}
	if user.Password == "" {
		return errors.New("password is empty")
	}
	if existed, _ := s.GetUser(&model.FindUser{Username: &user.Username}); existed != nil {
		return errors.New("username already exists")
	}
	if err := validatePassword(user.Password); err != nil {
		return err
	}
	return nil
}

func ValidateSignupRequest(s *store.Store, user *model.UserSignupRequest) error {
	if user == nil {
		return errors.New("user is nil")
	}
	if user.Username == "" {
		return errors.New("username is empty")
	}
	if !util.UIDMatcher.MatchString(user.Username) {
		return errors.New("username is invalid")
	}
	if user.Email != "" && !util.ValidateEmail(user.Email) {
		return errors.New("email is invalid")
	}
	if user.Password == "" {
		return errors.New("password is empty")
	}
	if existed, _ := s.GetUser(&model.FindUser{Username: &user.Username}); existed != nil {
		return errors.New("username already exists")
	}
	if err := validatePassword(user.Password); err != nil {
		return err
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 6 {
		return errors.New("password is too short")
	}
	return nil
}
