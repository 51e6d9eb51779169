package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/yomu-app/yomu/config"
	"github.com/yomu-app/yomu/log"
	"github.com/yomu-app/yomu/store"
	"github.com/yomu-app/yomu/store/db"
	"github.com/yomu-app/yomu/worker"
)

// Initialize the logger and config
func init() {
	config.Opts = config.GetDefaultOptions()
	log.Logger = log.NewLogger()
}

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	config.Opts.Data = dir
	config.Opts.DSN = dir + "/yomu_test.db"

	d, err := db.NewDB(config.Opts.DSN)
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := d.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate db: %v", err)
	}

	s := store.NewStore(d.DB)
	pool := worker.NewViewRecordPool(s, 1)

	router := mux.NewRouter()
	Server(router, s, pool)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, s
}

func newTestClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("Failed to create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
}

// signUpAndIn registers a user and signs the client in. The first user
// of a fresh database becomes the host.
func signUpAndIn(t *testing.T, client *http.Client, baseURL, username string) {
	t.Helper()
	resp := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/signup", map[string]string{
		"username": username,
		"password": "secret123",
		"nickname": username,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Signup returned %d", resp.StatusCode)
	}

	resp = doJSON(t, client, http.MethodPost, baseURL+"/api/v1/signin", map[string]string{
		"username": username,
		"password": "secret123",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Signin returned %d", resp.StatusCode)
	}
}

func createTestManga(t *testing.T, client *http.Client, baseURL, title string) map[string]any {
	t.Helper()
	resp := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/admin/manga", map[string]any{
		"title":  title,
		"kind":   "manga",
		"status": "ongoing",
		"genres": []string{"Action", "Drama"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Create manga returned %d", resp.StatusCode)
	}
	manga := map[string]any{}
	decodeBody(t, resp, &manga)
	return manga
}

func createTestChapter(t *testing.T, client *http.Client, baseURL, mangaSlug string, main int) map[string]any {
	t.Helper()
	resp := doJSON(t, client, http.MethodPost, fmt.Sprintf("%s/api/v1/admin/manga/%s/chapters", baseURL, mangaSlug), map[string]any{
		"chapter_main": main,
		"page_count":   20,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Create chapter returned %d", resp.StatusCode)
	}
	chapter := map[string]any{}
	decodeBody(t, resp, &chapter)
	return chapter
}

func TestSignupAndMe(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newTestClient(t)
	signUpAndIn(t, client, srv.URL, "akira")

	resp := doJSON(t, client, http.MethodGet, srv.URL+"/api/v1/me", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Me returned %d", resp.StatusCode)
	}
	me := map[string]any{}
	decodeBody(t, resp, &me)
	if me["username"] != "akira" {
		t.Errorf("Expected username akira, got %v", me["username"])
	}
	if me["role"] != "HOST" {
		t.Errorf("Expected first user to be HOST, got %v", me["role"])
	}
}

func TestMeUnauthenticated(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newTestClient(t)

	resp := doJSON(t, client, http.MethodGet, srv.URL+"/api/v1/me", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", resp.StatusCode)
	}
}

func TestCatalogIsPublic(t *testing.T) {
	srv, _ := newTestServer(t)
	admin := newTestClient(t)
	signUpAndIn(t, admin, srv.URL, "akira")
	createTestManga(t, admin, srv.URL, "One Punch Man")

	// No cookie jar, fully anonymous.
	resp := doJSON(t, &http.Client{}, http.MethodGet, srv.URL+"/api/v1/manga", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Anonymous catalog list returned %d", resp.StatusCode)
	}
	listing := struct {
		Items []map[string]any `json:"items"`
	}{}
	decodeBody(t, resp, &listing)
	if len(listing.Items) != 1 {
		t.Fatalf("Expected 1 manga, got %d", len(listing.Items))
	}
	if listing.Items[0]["slug"] != "one-punch-man" {
		t.Errorf("Expected slug one-punch-man, got %v", listing.Items[0]["slug"])
	}
}

func TestMangaCRUD(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newTestClient(t)
	signUpAndIn(t, client, srv.URL, "akira")

	manga := createTestManga(t, client, srv.URL, "Berserk")
	if manga["slug"] != "berserk" {
		t.Fatalf("Expected slug berserk, got %v", manga["slug"])
	}

	// Duplicate slug is rejected.
	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/admin/manga", map[string]any{
		"title": "Berserk",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for duplicate slug, got %d", resp.StatusCode)
	}

	resp = doJSON(t, client, http.MethodPut, srv.URL+"/api/v1/admin/manga/berserk", map[string]any{
		"title":  "Berserk",
		"status": "completed",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Update returned %d", resp.StatusCode)
	}
	updated := map[string]any{}
	decodeBody(t, resp, &updated)
	if updated["status"] != "completed" {
		t.Errorf("Expected status completed, got %v", updated["status"])
	}

	resp = doJSON(t, client, http.MethodDelete, srv.URL+"/api/v1/admin/manga/berserk", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Delete returned %d", resp.StatusCode)
	}

	resp = doJSON(t, client, http.MethodGet, srv.URL+"/api/v1/manga/berserk", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestChapterDetailHasNextChapter(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newTestClient(t)
	signUpAndIn(t, client, srv.URL, "akira")
	createTestManga(t, client, srv.URL, "Berserk")
	first := createTestChapter(t, client, srv.URL, "berserk", 1)
	createTestChapter(t, client, srv.URL, "berserk", 2)

	resp := doJSON(t, client, http.MethodGet, fmt.Sprintf("%s/api/v1/chapter/%v", srv.URL, first["slug"]), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Chapter detail returned %d", resp.StatusCode)
	}
	detail := struct {
		MangaSlug   string          `json:"manga_slug"`
		NextChapter *map[string]any `json:"next_chapter"`
	}{}
	decodeBody(t, resp, &detail)
	if detail.MangaSlug != "berserk" {
		t.Errorf("Expected manga_slug berserk, got %q", detail.MangaSlug)
	}
	if detail.NextChapter == nil {
		t.Fatal("Expected a next chapter")
	}
	if (*detail.NextChapter)["chapter_main"] != float64(2) {
		t.Errorf("Expected next chapter 2, got %v", (*detail.NextChapter)["chapter_main"])
	}
}

func TestReadingProgressFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newTestClient(t)
	signUpAndIn(t, client, srv.URL, "akira")
	createTestManga(t, client, srv.URL, "Berserk")
	first := createTestChapter(t, client, srv.URL, "berserk", 1)
	second := createTestChapter(t, client, srv.URL, "berserk", 2)

	for _, c := range []map[string]any{first, second} {
		resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/reading/progress", map[string]any{
			"manga_slug":   "berserk",
			"chapter_slug": c["slug"],
			"page_number":  5,
		})
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Save progress returned %d", resp.StatusCode)
		}
	}

	// History collapses to one entry per manga.
	resp := doJSON(t, client, http.MethodGet, srv.URL+"/api/v1/reading/history", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("History returned %d", resp.StatusCode)
	}
	history := struct {
		Items []map[string]any `json:"items"`
	}{}
	decodeBody(t, resp, &history)
	if len(history.Items) != 1 {
		t.Fatalf("Expected 1 history entry, got %d", len(history.Items))
	}
	if history.Items[0]["chapter_slug"] != second["slug"] {
		t.Errorf("Expected latest chapter in history, got %v", history.Items[0]["chapter_slug"])
	}

	resp = doJSON(t, client, http.MethodGet, srv.URL+"/api/v1/reading/manga/berserk/last-read", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Last read returned %d", resp.StatusCode)
	}
	lastRead := struct {
		Entry *map[string]any `json:"entry"`
	}{}
	decodeBody(t, resp, &lastRead)
	if lastRead.Entry == nil {
		t.Fatal("Expected a last-read entry")
	}

	resp = doJSON(t, client, http.MethodDelete, srv.URL+"/api/v1/reading/history/manga/berserk", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Delete history returned %d", resp.StatusCode)
	}
	deleted := struct {
		DeletedCount int64 `json:"deleted_count"`
	}{}
	decodeBody(t, resp, &deleted)
	if deleted.DeletedCount != 2 {
		t.Errorf("Expected 2 deleted rows, got %d", deleted.DeletedCount)
	}
}

func TestProgressRejectsMismatchedChapter(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newTestClient(t)
	signUpAndIn(t, client, srv.URL, "akira")
	createTestManga(t, client, srv.URL, "Berserk")
	createTestManga(t, client, srv.URL, "Monster")
	chapter := createTestChapter(t, client, srv.URL, "monster", 1)

	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/reading/progress", map[string]any{
		"manga_slug":   "berserk",
		"chapter_slug": chapter["slug"],
		"page_number":  1,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for mismatched chapter, got %d", resp.StatusCode)
	}
}

func TestBookmarkFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newTestClient(t)
	signUpAndIn(t, client, srv.URL, "akira")
	createTestManga(t, client, srv.URL, "Berserk")

	// Adding twice is idempotent.
	var firstID float64
	for i := 0; i < 2; i++ {
		resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/bookmarks/manga/berserk", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Add bookmark returned %d", resp.StatusCode)
		}
		bookmark := map[string]any{}
		decodeBody(t, resp, &bookmark)
		if i == 0 {
			firstID = bookmark["id"].(float64)
		} else if bookmark["id"].(float64) != firstID {
			t.Errorf("Expected stable bookmark id, got %v then %v", firstID, bookmark["id"])
		}
	}

	resp := doJSON(t, client, http.MethodGet, srv.URL+"/api/v1/bookmarks/check/berserk", nil)
	check := map[string]bool{}
	decodeBody(t, resp, &check)
	if !check["bookmarked"] {
		t.Error("Expected manga to be bookmarked")
	}

	resp = doJSON(t, client, http.MethodDelete, srv.URL+"/api/v1/bookmarks/manga/berserk", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Remove bookmark returned %d", resp.StatusCode)
	}

	resp = doJSON(t, client, http.MethodDelete, srv.URL+"/api/v1/bookmarks/manga/berserk", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 removing a missing bookmark, got %d", resp.StatusCode)
	}
}

func TestReadingListFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newTestClient(t)
	signUpAndIn(t, client, srv.URL, "akira")
	createTestManga(t, client, srv.URL, "Berserk")

	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/lists", map[string]any{
		"manga_slug": "berserk",
		"status":     "reading",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Upsert list entry returned %d", resp.StatusCode)
	}

	// Moving shelves and rating is an update, not a second row.
	resp = doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/lists", map[string]any{
		"manga_slug": "berserk",
		"status":     "completed",
		"rating":     9,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Second upsert returned %d", resp.StatusCode)
	}

	resp = doJSON(t, client, http.MethodGet, srv.URL+"/api/v1/lists/status/berserk", nil)
	status := struct {
		InList bool            `json:"in_list"`
		Entry  *map[string]any `json:"entry"`
	}{}
	decodeBody(t, resp, &status)
	if !status.InList || status.Entry == nil {
		t.Fatal("Expected manga to be in the list")
	}
	if (*status.Entry)["status"] != "completed" {
		t.Errorf("Expected status completed, got %v", (*status.Entry)["status"])
	}

	resp = doJSON(t, client, http.MethodGet, srv.URL+"/api/v1/lists/stats", nil)
	stats := struct {
		ByStatus    map[string]int `json:"reading_list"`
		TotalInList int            `json:"total_in_list"`
	}{}
	decodeBody(t, resp, &stats)
	if stats.TotalInList != 1 {
		t.Errorf("Expected 1 entry in list, got %d", stats.TotalInList)
	}
	if stats.ByStatus["completed"] != 1 {
		t.Errorf("Expected 1 completed, got %d", stats.ByStatus["completed"])
	}
	if len(stats.ByStatus) != 5 {
		t.Errorf("Expected all 5 shelves in stats, got %d", len(stats.ByStatus))
	}
}

func TestListRejectsInvalidRating(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newTestClient(t)
	signUpAndIn(t, client, srv.URL, "akira")
	createTestManga(t, client, srv.URL, "Berserk")

	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/v1/lists", map[string]any{
		"manga_slug": "berserk",
		"status":     "reading",
		"rating":     11,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for rating 11, got %d", resp.StatusCode)
	}
}

func TestAnalyticsRequiresAdmin(t *testing.T) {
	srv, _ := newTestServer(t)

	admin := newTestClient(t)
	signUpAndIn(t, admin, srv.URL, "akira")

	member := newTestClient(t)
	signUpAndIn(t, member, srv.URL, "miko")

	resp := doJSON(t, member, http.MethodGet, srv.URL+"/api/v1/admin/analytics/overview", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403 for a regular user, got %d", resp.StatusCode)
	}

	resp = doJSON(t, admin, http.MethodGet, srv.URL+"/api/v1/admin/analytics/overview", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 for the host, got %d", resp.StatusCode)
	}
	overview := struct {
		Database struct {
			TotalUsers int `json:"total_users"`
		} `json:"database"`
	}{}
	decodeBody(t, resp, &overview)
	if overview.Database.TotalUsers != 2 {
		t.Errorf("Expected 2 users in overview, got %d", overview.Database.TotalUsers)
	}
}

func TestPruneAllRequiresConfirm(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newTestClient(t)
	signUpAndIn(t, client, srv.URL, "akira")

	resp := doJSON(t, client, http.MethodDelete, srv.URL+"/api/v1/admin/analytics/manga-views/all", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 without confirm, got %d", resp.StatusCode)
	}

	resp = doJSON(t, client, http.MethodDelete, srv.URL+"/api/v1/admin/analytics/manga-views/all?confirm=true", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 with confirm, got %d", resp.StatusCode)
	}
}
