// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"jira.example.com", "https://jira.example.com"},
		{"https://jira.example.com/", "https://jira.example.com"},
		{"http://localhost:8080", "http://localhost:8080"},
		{"  jira.example.com  ", "https://jira.example.com"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeBaseURL(tt.in))
	}
}

func TestClient_Issue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/issue/PROJ-1", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok, "expected basic auth")
		assert.Equal(t, "alice@example.com", user)
		assert.Equal(t, "token-a", pass)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"key": "PROJ-1",
			"fields": {
				"summary": "Fix login",
				"status": {"name": "To Do"},
				"created": "2026-01-01T00:00:00.000+0000"
			}
		}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "alice@example.com", "token-a", "test", 5*time.Second, nil)

	issue, err := c.Issue(context.Background(), "PROJ-1")
	require.NoError(t, err)
	assert.Equal(t, "PROJ-1", issue.Key)
	assert.Equal(t, "To Do", issue.Status)
	assert.Equal(t, DefaultAssignee, issue.Assignee)
}

func TestClient_Issue_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"errorMessages":["Issue does not exist"]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "alice@example.com", "token-a", "test", 5*time.Second, nil)

	_, err := c.Issue(context.Background(), "PROJ-404")
	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusNotFound, backendErr.StatusCode)
	assert.Contains(t, backendErr.Message, "Issue does not exist")
}

func TestClient_Search_RequestsCappedPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/search", r.URL.Path)
		assert.Equal(t, "project = PROJ", r.URL.Query().Get("jql"))
		assert.Equal(t, "50", r.URL.Query().Get("maxResults"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"startAt":0,"maxResults":50,"total":2,"issues":[
			{"key":"PROJ-2","fields":{"summary":"b","status":{"name":"Done"},"created":"2026-02-01T00:00:00.000+0000"}},
			{"key":"PROJ-1","fields":{"summary":"a","status":{"name":"To Do"},"created":"2026-01-01T00:00:00.000+0000"}}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "alice@example.com", "token-a", "test", 5*time.Second, nil)

	issues, err := c.Search(context.Background(), "project = PROJ")
	require.NoError(t, err)
	require.Len(t, issues, 2)

	// Backend order is preserved, no local re-sorting.
	assert.Equal(t, "PROJ-2", issues[0].Key)
	assert.Equal(t, "PROJ-1", issues[1].Key)
}

func TestClient_Search_TruncatesOversizedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A misbehaving backend ignoring maxResults still gets capped locally.
		resp := rawSearchResponse{Total: 60}
		for i := 0; i < 60; i++ {
			resp.Issues = append(resp.Issues, rawIssue{Key: fmt.Sprintf("PROJ-%d", i+1)})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "alice@example.com", "token-a", "test", 5*time.Second, nil)

	issues, err := c.Search(context.Background(), "project = PROJ")
	require.NoError(t, err)
	assert.Len(t, issues, MaxSearchResults)
	assert.Equal(t, "PROJ-1", issues[0].Key)
	assert.Equal(t, "PROJ-50", issues[len(issues)-1].Key)
}

func TestClient_Search_MalformedJQL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"errorMessages":["Error in the JQL Query"]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "alice@example.com", "token-a", "test", 5*time.Second, nil)

	_, err := c.Search(context.Background(), "not valid jql (((")
	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusBadRequest, backendErr.StatusCode)
}

func TestClient_NoBackendConfigured(t *testing.T) {
	c := NewClient("", "alice@example.com", "token-a", "test", 5*time.Second, nil)

	_, err := c.Issue(context.Background(), "PROJ-1")
	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Contains(t, backendErr.Message, "no backend address configured")
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "alice@example.com", "token-a", "test", 5*time.Second, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Issue(ctx, "PROJ-1")
	require.Error(t, err)
}
