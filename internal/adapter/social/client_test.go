package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Trinath052004/LinkedIn-content-Automation-Platform/internal/domain"
)

func testPiece() domain.ContentPiece {
	return domain.ContentPiece{
		Platform: domain.PlatformLinkedIn,
		Content:  "Agents are eating SaaS.",
		Hashtags: []string{"ai", "saas"},
	}
}

func TestClientPost(t *testing.T) {
	var userinfoCalls int32
	var gotPost map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/userinfo":
			atomic.AddInt32(&userinfoCalls, 1)
			fmt.Fprint(w, `{"sub":"abc123"}`)
		case "/rest/posts":
			if r.Header.Get("LinkedIn-Version") != "202401" {
				t.Fatalf("missing LinkedIn-Version header")
			}
			if err := json.NewDecoder(r.Body).Decode(&gotPost); err != nil {
				t.Fatalf("failed to decode post: %v", err)
			}
			w.Header().Set("x-restli-id", "urn:li:share:42")
			w.WriteHeader(http.StatusCreated)
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(Credentials{AccessToken: "tok"}, server.URL, server.URL+"/oauth", time.Second)

	postID, err := client.Post(context.Background(), testPiece())
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if postID != "urn:li:share:42" {
		t.Fatalf("post id = %q", postID)
	}
	if gotPost["author"] != "urn:li:person:abc123" {
		t.Fatalf("author = %v", gotPost["author"])
	}
	commentary, _ := gotPost["commentary"].(string)
	if !strings.Contains(commentary, "#ai #saas") {
		t.Fatalf("hashtags not appended: %q", commentary)
	}

	// Second post reuses the cached URN.
	if _, err := client.Post(context.Background(), testPiece()); err != nil {
		t.Fatalf("second Post failed: %v", err)
	}
	if n := atomic.LoadInt32(&userinfoCalls); n != 1 {
		t.Fatalf("userinfo called %d times, want 1", n)
	}
}

func TestClientPostTruncatesAtLimit(t *testing.T) {
	var commentary string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/userinfo":
			fmt.Fprint(w, `{"sub":"abc123"}`)
		case "/rest/posts":
			var body map[string]interface{}
			json.NewDecoder(r.Body).Decode(&body)
			commentary, _ = body["commentary"].(string)
			w.Header().Set("x-restli-id", "id")
			w.WriteHeader(http.StatusCreated)
		}
	}))
	defer server.Close()

	client := NewClient(Credentials{AccessToken: "tok"}, server.URL, "", time.Second)
	piece := testPiece()
	piece.Content = strings.Repeat("x", 4000)

	if _, err := client.Post(context.Background(), piece); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if len(commentary) != maxPostChars {
		t.Fatalf("commentary length = %d, want %d", len(commentary), maxPostChars)
	}
}

func TestClientPostRefreshesExpiredToken(t *testing.T) {
	var refreshed int32

	mux := http.NewServeMux()
	mux.HandleFunc("/v2/userinfo", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"sub":"abc123"}`)
	})
	mux.HandleFunc("/rest/posts", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"expired"}`)
			return
		}
		w.Header().Set("x-restli-id", "post-after-refresh")
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("/oauth", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshed, 1)
		if r.FormValue("grant_type") != "refresh_token" {
			t.Fatalf("grant_type = %q", r.FormValue("grant_type"))
		}
		fmt.Fprint(w, `{"access_token":"fresh"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(Credentials{
		AccessToken:  "stale",
		RefreshToken: "refresh",
		ClientID:     "cid",
		ClientSecret: "secret",
	}, server.URL, server.URL+"/oauth", time.Second)

	postID, err := client.Post(context.Background(), testPiece())
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if postID != "post-after-refresh" {
		t.Fatalf("post id = %q", postID)
	}
	if atomic.LoadInt32(&refreshed) != 1 {
		t.Fatal("token refresh not attempted")
	}
}

func TestClientPostNoRetryOnServerError(t *testing.T) {
	var postCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/userinfo":
			fmt.Fprint(w, `{"sub":"abc123"}`)
		case "/rest/posts":
			atomic.AddInt32(&postCalls, 1)
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client := NewClient(Credentials{AccessToken: "tok"}, server.URL, "", time.Second)
	if _, err := client.Post(context.Background(), testPiece()); err == nil {
		t.Fatal("expected error")
	}
	if atomic.LoadInt32(&postCalls) != 1 {
		t.Fatalf("post attempted %d times, want exactly 1", atomic.LoadInt32(&postCalls))
	}
}

func TestClientPostMissingToken(t *testing.T) {
	client := NewClient(Credentials{}, "http://unused", "", time.Second)
	if _, err := client.Post(context.Background(), testPiece()); err == nil {
		t.Fatal("expected error without access token")
	}
}
