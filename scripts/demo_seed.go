package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

type userSeed struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone_number,omitempty"`
}

type seededUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Active   bool   `json:"active"`
}

type listResponse struct {
	Data  []seededUser `json:"data"`
	Total int          `json:"total"`
}

type httpError struct {
	StatusCode int
	body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.body)
}

var client = &http.Client{Timeout: 10 * time.Second}

func main() {
	baseURL := flag.String("base-url", "http://localhost:8080", "API base URL")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	users := []userSeed{
		{Username: "demo1", Email: "demo1@example.com", Password: "Passw0rd!", FirstName: "Demo", LastName: "One", Phone: "555-0101"},
		{Username: "demo2", Email: "demo2@example.com", Password: "Passw0rd!", FirstName: "Demo", LastName: "Two", Phone: "555-0102"},
		{Username: "demo3", Email: "demo3@example.com", Password: "Passw0rd!", FirstName: "Demo", LastName: "Three"},
	}

	for _, u := range users {
		if err := seedUser(*baseURL, u); err != nil {
			logger.Error("seed failed", zap.String("username", u.Username), zap.Error(err))
			continue
		}
		logger.Info("seeded", zap.String("username", u.Username))
	}

	var found listResponse
	q := url.Values{"last_name": {"t"}, "active": {"true"}}
	if err := getJSON(*baseURL+"/api/v1/users/search?"+q.Encode(), &found); err != nil {
		logger.Error("search failed", zap.Error(err))
		return
	}
	for _, u := range found.Data {
		logger.Info("search hit", zap.String("id", u.ID), zap.String("username", u.Username))
	}
}

// seedUser creates u, treating an existing username or email as success.
func seedUser(baseURL string, u userSeed) error {
	err := postJSON(baseURL+"/api/v1/users", u, nil)
	var httpErr *httpError
	if err != nil && errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusConflict {
		return nil
	}
	return err
}

func postJSON(url string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return do(req, out)
}

func getJSON(url string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return do(req, out)
}

func do(req *http.Request, out interface{}) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &httpError{StatusCode: resp.StatusCode, body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
