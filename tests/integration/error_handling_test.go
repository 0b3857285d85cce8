//go:build integration
// +build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func TestUnauthorizedAccess(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")

	resp := makeAuthenticatedRequest(t, "GET", fmt.Sprintf("%s/v1/questions/mode-counts?scope=medicine", baseURL), "", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	var errResp map[string]interface{}
	decodeBody(t, resp, &errResp)
	if errResp["error"] == nil {
		t.Fatal("error field is missing")
	}
}

func TestValidationErrors(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
	token := mintToken(t)

	testCases := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"no scope keys", map[string]interface{}{"count": 5}},
		{"blank scope keys", map[string]interface{}{"scopeKeys": []string{"  "}, "count": 5}},
		{"unknown mode filter", map[string]interface{}{"scopeKeys": []string{"medicine"}, "modes": []string{"bookmarked"}, "count": 5}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := makeAuthenticatedRequest(t, "POST", fmt.Sprintf("%s/v1/quizzes", baseURL), token, tc.payload)
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestForeignQuizIsInvisible(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
	owner := mintToken(t)
	stranger := mintToken(t)

	quiz := createQuiz(t, baseURL, owner, 2)

	resp := makeAuthenticatedRequest(t, "GET", fmt.Sprintf("%s/v1/quizzes/%s", baseURL, quiz.ID), stranger, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for another user's quiz, got %d", resp.StatusCode)
	}
}

func TestUnknownQuiz(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
	token := mintToken(t)

	resp := makeAuthenticatedRequest(t, "GET", fmt.Sprintf("%s/v1/quizzes/%s", baseURL, uuid.New()), token, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
