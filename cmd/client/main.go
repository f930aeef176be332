// Command client walks a user through its full lifecycle against a
// running server: create, fetch, rename, delete, then confirm the user
// is gone.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	baseURL := flag.String("base-url", "http://127.0.0.1:8080", "server base URL")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}
	base := strings.TrimRight(*baseURL, "/")

	status, body, err := do(client, http.MethodPost, base+"/users", map[string]string{
		"username": "user_back",
		"password": "123456",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "create user:", err)
		os.Exit(1)
	}

	var created struct {
		ID int64 `json:"id"`
	}
	if status != http.StatusOK || json.Unmarshal(body, &created) != nil {
		fmt.Fprintf(os.Stderr, "create user: unexpected response %d %s\n", status, body)
		os.Exit(1)
	}

	userURL := fmt.Sprintf("%s/users/%d", base, created.ID)

	steps := []struct {
		method string
		url    string
		body   any
	}{
		{http.MethodGet, userURL, nil},
		{http.MethodPatch, userURL, map[string]string{"username": "user_new"}},
		{http.MethodGet, userURL, nil},
		{http.MethodDelete, userURL, nil},
		{http.MethodGet, userURL, nil},
	}

	for _, step := range steps {
		status, body, err := do(client, step.method, step.url, step.body)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %s: %v\n", step.method, step.url, err)
			os.Exit(1)
		}
		fmt.Printf("%s %s -> %d %s\n", step.method, step.url, status, body)
	}
}

func do(client *http.Client, method, url string, payload any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, bytes.TrimSpace(body), nil
}
