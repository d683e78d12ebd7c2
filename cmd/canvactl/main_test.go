package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func apiServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/forms/all", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"statusCode": 200,
			"data": []map[string]any{
				{"_id": "65a000000000000000000001", "firstName": "Ann", "lastName": "Lee", "createdAt": "2024-01-02T03:04:05Z"},
			},
			"message": "Forms found successfully.",
			"success": true,
		})
	})
	mux.HandleFunc("DELETE /api/v1/forms/delete/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{
			"statusCode": 403, "data": nil, "message": "You are not authorized to delete this form.", "success": false,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func runCLI(t *testing.T, srv *httptest.Server, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	base := []string{"--session", filepath.Join(t.TempDir(), "session.json")}
	if srv != nil {
		base = append(base, "--api", srv.URL+"/api/v1")
	}
	code := run(append(base, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_List(t *testing.T) {
	code, out, _ := runCLI(t, apiServer(t), "list")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "65a000000000000000000001")
	assert.Contains(t, out, "Ann")
}

func TestRun_ServerErrorLikeToast(t *testing.T) {
	code, _, errOut := runCLI(t, apiServer(t), "delete", "65a000000000000000000001")
	assert.Equal(t, 1, code)
	assert.Equal(t, "error: You are not authorized to delete this form.\n", errOut)
}

func TestRun_MeWithoutSession(t *testing.T) {
	code, _, errOut := runCLI(t, nil, "me")
	assert.Equal(t, 3, code)
	assert.Contains(t, errOut, "Sign in again")
}

func TestRun_UnknownCommand(t *testing.T) {
	code, _, errOut := runCLI(t, nil, "frobnicate")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, `unknown command "frobnicate"`)
}

func TestRun_GetNeedsID(t *testing.T) {
	code, _, errOut := runCLI(t, nil, "get")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "accepts 1 arg(s), received 0")
}

func TestRun_ClientValidation(t *testing.T) {
	code, _, errOut := runCLI(t, nil, "create", "--first", "A", "--last", "Lee", "--thumbnail", "x.png")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "First name must be at least 2 characters.")
}
