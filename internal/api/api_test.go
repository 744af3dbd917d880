package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/craftfolio-api/internal/api"
	"github.com/craftfolio-api/internal/auth"
	"github.com/craftfolio-api/internal/comments"
	"github.com/craftfolio-api/internal/config"
	"github.com/craftfolio-api/internal/docstore"
	"github.com/craftfolio-api/internal/mocks"
	"github.com/craftfolio-api/internal/posts"
)

func setupTestRouter() (*gin.Engine, *mocks.MockDocStore, *mocks.MockUserRepository) {
	gin.SetMode(gin.TestMode)

	store := mocks.NewMockDocStore()
	users := mocks.NewMockUserRepository()
	log := zerolog.Nop()

	authCfg := &config.AuthConfig{
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
	commentCfg := &config.CommentConfig{MinLength: 5}

	services := &api.Services{
		Auth:     auth.NewService(users, authCfg, log),
		Posts:    posts.NewService(store, log),
		Comments: comments.NewService(store, commentCfg, log),
		Users:    users,
	}

	return api.NewRouter(services, log), store, users
}

func doJSON(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func signUp(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()

	w := doJSON(router, "POST", "/v1/auth/signup", "", map[string]string{
		"email":    email,
		"password": "secret1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Sign-up failed with status %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Token == "" {
		t.Fatal("Sign-up returned no token")
	}
	return resp.Token
}

func seedTestComment(store *mocks.MockDocStore, postID, commentID, author string) {
	store.SeedDoc("posts/"+postID+"/comments", commentID, docstore.Fields{
		"text":      "seeded comment text",
		"user":      author,
		"createdAt": time.Now().UTC(),
		"likes":     []string{},
		"dislikes":  []string{},
	})
}

func TestHealthEndpoint(t *testing.T) {
	router, _, _ := setupTestRouter()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)

	if response["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", response["status"])
	}
	if response["service"] != "craftfolio-api" {
		t.Errorf("Expected service name, got %v", response["service"])
	}
}

func TestSubmitComment_Unauthenticated(t *testing.T) {
	router, _, _ := setupTestRouter()

	w := doJSON(router, "POST", "/v1/posts/p1/comments", "", map[string]string{
		"text": "a perfectly valid comment",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCommentFlow(t *testing.T) {
	router, _, _ := setupTestRouter()
	token := signUp(t, router, "b@x.com")

	// Too-short text is rejected
	w := doJSON(router, "POST", "/v1/posts/p1/comments", token, map[string]string{"text": "hey"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for short comment, got %d", w.Code)
	}

	// Valid submission
	w = doJSON(router, "POST", "/v1/posts/p1/comments", token, map[string]string{
		"text": "love this pack!",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// The tree endpoint reflects it, with the author's identifier
	w = doJSON(router, "GET", "/v1/posts/p1/comments", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		Comments []struct {
			Text   string `json:"text"`
			Author string `json:"author"`
		} `json:"comments"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Comments) != 1 {
		t.Fatalf("Expected 1 comment, got %d", len(resp.Comments))
	}
	if resp.Comments[0].Author != "b@x.com" || resp.Comments[0].Text != "love this pack!" {
		t.Errorf("Unexpected comment %+v", resp.Comments[0])
	}
}

func TestReplyFlow(t *testing.T) {
	router, store, _ := setupTestRouter()
	token := signUp(t, router, "b@x.com")
	seedTestComment(store, "p1", "c1", "a@x.com")

	w := doJSON(router, "POST", "/v1/posts/p1/comments/c1/replies", token, map[string]string{
		"text":       "nice work here",
		"replied_to": "a@x.com",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(router, "GET", "/v1/posts/p1/comments", "", nil)
	var resp struct {
		Comments []struct {
			Replies []struct {
				Author    string `json:"author"`
				RepliedTo string `json:"replied_to"`
			} `json:"replies"`
		} `json:"comments"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Comments) != 1 || len(resp.Comments[0].Replies) != 1 {
		t.Fatalf("Expected 1 comment with 1 reply, got %s", w.Body.String())
	}
	reply := resp.Comments[0].Replies[0]
	if reply.Author != "b@x.com" || reply.RepliedTo != "a@x.com" {
		t.Errorf("Unexpected reply %+v", reply)
	}
}

func TestVoteEndpoints(t *testing.T) {
	router, store, _ := setupTestRouter()
	token := signUp(t, router, "b@x.com")
	seedTestComment(store, "p1", "c1", "a@x.com")

	// Signed-out vote is a silent no-op
	w := doJSON(router, "POST", "/v1/posts/p1/comments/c1/like", "", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for anonymous toggle, got %d", w.Code)
	}

	w = doJSON(router, "POST", "/v1/posts/p1/comments/c1/like", token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", w.Code)
	}
	w = doJSON(router, "POST", "/v1/posts/p1/comments/c1/dislike", token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", w.Code)
	}

	// Like then dislike leaves only the dislike
	fields, err := store.Get(context.Background(), "posts/p1/comments/c1")
	if err != nil {
		t.Fatalf("Comment lookup failed: %v", err)
	}
	if likes := fields["likes"].([]string); len(likes) != 0 {
		t.Errorf("Expected empty likes, got %v", likes)
	}
	if dislikes := fields["dislikes"].([]string); len(dislikes) != 1 || dislikes[0] != "b@x.com" {
		t.Errorf("Expected dislikes [b@x.com], got %v", dislikes)
	}
}

func TestEditComment_NonAuthorRejected(t *testing.T) {
	router, store, _ := setupTestRouter()
	token := signUp(t, router, "b@x.com")
	seedTestComment(store, "p1", "c1", "a@x.com")

	w := doJSON(router, "PUT", "/v1/posts/p1/comments/c1", token, map[string]string{
		"text": "hijacked content",
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPostCreation_AdminOnly(t *testing.T) {
	router, _, users := setupTestRouter()
	token := signUp(t, router, "creator@x.com")

	body := map[string]string{
		"slug":     "emerald-pack",
		"title":    "Emerald Pack",
		"body":     "A 16x resource pack.",
		"category": "resource-pack",
	}

	w := doJSON(router, "POST", "/v1/posts", token, body)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for member, got %d", w.Code)
	}

	// Promote the account and retry
	for _, u := range users.Users {
		u.Role = "admin"
	}
	w = doJSON(router, "POST", "/v1/posts", token, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 for admin, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(router, "GET", "/v1/posts", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp struct {
		Posts []struct {
			Slug string `json:"slug"`
		} `json:"posts"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Posts) != 1 || resp.Posts[0].Slug != "emerald-pack" {
		t.Errorf("Unexpected post list: %s", w.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _, _ := setupTestRouter()
	signUp(t, router, "b@x.com")

	w := doJSON(router, "GET", "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		Database struct {
			Users float64 `json:"users"`
		} `json:"database"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Database.Users != 1 {
		t.Errorf("Expected 1 user in metrics, got %v", resp.Database.Users)
	}
}
