package store

import (
	"testing"

	"github.com/yomu-app/yomu/model"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)

	created, err := s.CreateUser(&model.User{
		Username:     "akira",
		Role:         model.RoleUser,
		Email:        "akira@example.com",
		Nickname:     "Akira",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("Expected a generated user id")
	}
	if created.RowStatus != model.Normal {
		t.Errorf("Expected NORMAL row status, got %s", created.RowStatus)
	}

	username := "akira"
	user, err := s.GetUser(&model.FindUser{Username: &username})
	if err != nil {
		t.Fatalf("Failed to get user: %v", err)
	}
	if user == nil {
		t.Fatalf("Expected user, got nil")
	}
	if user.Email != "akira@example.com" {
		t.Errorf("Unexpected email: %s", user.Email)
	}

	// Second lookup by ID should hit the cache.
	cached, err := s.GetUser(&model.FindUser{ID: &user.ID})
	if err != nil {
		t.Fatalf("Failed to get cached user: %v", err)
	}
	if cached != user && cached.ID != user.ID {
		t.Errorf("Cache returned a different user")
	}
}

func TestGetUserNotFound(t *testing.T) {
	s := newTestStore(t)

	username := "nobody"
	user, err := s.GetUser(&model.FindUser{Username: &username})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if user != nil {
		t.Fatalf("Expected nil for a missing user, got %+v", user)
	}
}

func TestSetLastLogin(t *testing.T) {
	s := newTestStore(t)

	created, err := s.CreateUser(&model.User{
		Username:     "mika",
		Role:         model.RoleUser,
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if created.LastLoginTs != 0 {
		t.Fatalf("Expected zero last_login_ts on a fresh user")
	}

	if err := s.SetLastLogin(created.ID); err != nil {
		t.Fatalf("Failed to set last login: %v", err)
	}

	user, err := s.GetUser(&model.FindUser{ID: &created.ID})
	if err != nil {
		t.Fatalf("Failed to get user: %v", err)
	}
	if user.LastLoginTs == 0 {
		t.Errorf("Expected last_login_ts to be set")
	}
}

func TestArchiveUser(t *testing.T) {
	s := newTestStore(t)

	created, err := s.CreateUser(&model.User{
		Username:     "ghost",
		Role:         model.RoleUser,
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	if err := s.ArchiveUser(created.ID); err != nil {
		t.Fatalf("Failed to archive user: %v", err)
	}

	rowStatus := model.Normal
	active, err := s.ListUsers(&model.FindUser{RowStatus: &rowStatus})
	if err != nil {
		t.Fatalf("Failed to list users: %v", err)
	}
	for _, user := range active {
		if user.ID == created.ID {
			t.Errorf("Archived user still listed as NORMAL")
		}
	}
}
