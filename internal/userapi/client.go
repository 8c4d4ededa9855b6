// Package userapi is an HTTP client for the user management service REST API.
// Results are rendered as fenced code blocks so they read well when fed back
// to the model as tool output.
package userapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const DefaultBaseURL = "http://localhost:8041"

// Address is a user's physical address. All fields are required when an
// address is provided.
type Address struct {
	Country   string `json:"country"`
	City      string `json:"city"`
	Street    string `json:"street"`
	FlatHouse string `json:"flat_house"`
}

// CreditCard holds non-functional test card data.
type CreditCard struct {
	Num     string `json:"num"`
	CVV     string `json:"cvv"`
	ExpDate string `json:"exp_date"`
}

// UserCreate is the request body for creating a user. Name, Surname, Email and
// AboutMe are required by the service; the rest are optional.
type UserCreate struct {
	Name        string      `json:"name"`
	Surname     string      `json:"surname"`
	Email       string      `json:"email"`
	AboutMe     string      `json:"about_me"`
	Phone       string      `json:"phone,omitempty"`
	DateOfBirth string      `json:"date_of_birth,omitempty"`
	Gender      string      `json:"gender,omitempty"`
	Company     string      `json:"company,omitempty"`
	Salary      float64     `json:"salary,omitempty"`
	Address     *Address    `json:"address,omitempty"`
	CreditCard  *CreditCard `json:"credit_card,omitempty"`
}

// UserUpdate is the request body for updating a user. All fields are optional;
// only provided fields change.
type UserUpdate struct {
	Name        string      `json:"name,omitempty"`
	Surname     string      `json:"surname,omitempty"`
	Email       string      `json:"email,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	DateOfBirth string      `json:"date_of_birth,omitempty"`
	Gender      string      `json:"gender,omitempty"`
	Company     string      `json:"company,omitempty"`
	Salary      float64     `json:"salary,omitempty"`
	Address     *Address    `json:"address,omitempty"`
	CreditCard  *CreditCard `json:"credit_card,omitempty"`
}

// SearchQuery carries the optional search criteria. Name, surname and email
// match partially and case-insensitively; gender matches exactly.
type SearchQuery struct {
	Name    string
	Surname string
	Email   string
	Gender  string
}

// Client talks to the user service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the given base URL; empty means DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// GetUser fetches a single user by ID and formats it as a code block.
func (c *Client) GetUser(ctx context.Context, userID int) (string, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/users/%d", userID), nil, nil)
	if err != nil {
		return "", err
	}
	var user map[string]any
	if err := json.Unmarshal(body, &user); err != nil {
		return "", fmt.Errorf("decode user: %w", err)
	}
	return formatUser(user), nil
}

// SearchUsers returns all users matching the query, one code block per user.
// An empty result formats as an empty string plus the trailing newline.
func (c *Client) SearchUsers(ctx context.Context, q SearchQuery) (string, error) {
	params := url.Values{}
	if q.Name != "" {
		params.Set("name", q.Name)
	}
	if q.Surname != "" {
		params.Set("surname", q.Surname)
	}
	if q.Email != "" {
		params.Set("email", q.Email)
	}
	if q.Gender != "" {
		params.Set("gender", q.Gender)
	}
	body, err := c.do(ctx, http.MethodGet, "/v1/users/search", params, nil)
	if err != nil {
		return "", err
	}
	var users []map[string]any
	if err := json.Unmarshal(body, &users); err != nil {
		return "", fmt.Errorf("decode users: %w", err)
	}
	var sb strings.Builder
	for _, u := range users {
		sb.WriteString(formatUser(u))
	}
	sb.WriteString("\n")
	return sb.String(), nil
}

// CreateUser creates a user and returns a confirmation with the created data.
func (c *Client) CreateUser(ctx context.Context, user UserCreate) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/v1/users", nil, user)
	if err != nil {
		return "", err
	}
	var created map[string]any
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("decode user: %w", err)
	}
	return "User successfully created:\n" + formatUser(created), nil
}

// UpdateUser applies a partial update and returns the updated data.
func (c *Client) UpdateUser(ctx context.Context, userID int, user UserUpdate) (string, error) {
	body, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/v1/users/%d", userID), nil, user)
	if err != nil {
		return "", err
	}
	var updated map[string]any
	if err := json.Unmarshal(body, &updated); err != nil {
		return "", fmt.Errorf("decode user: %w", err)
	}
	return "User successfully updated:\n" + formatUser(updated), nil
}

// DeleteUser removes a user by ID.
func (c *Client) DeleteUser(ctx context.Context, userID int) (string, error) {
	if _, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/users/%d", userID), nil, nil); err != nil {
		return "", err
	}
	return "User successfully deleted", nil
}

// do performs one request. Any non-2xx status becomes an "HTTP <code>: <body>"
// error, matching what the model is expected to read back.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, payload any) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// Field order for formatted output; unknown fields follow alphabetically.
var userFieldOrder = []string{
	"id", "name", "surname", "email", "about_me", "phone", "date_of_birth",
	"gender", "company", "salary", "address", "credit_card",
}

// formatUser renders one user object as an indented code block.
func formatUser(user map[string]any) string {
	var sb strings.Builder
	sb.WriteString("```\n")
	seen := make(map[string]bool, len(user))
	for _, k := range userFieldOrder {
		if v, ok := user[k]; ok {
			fmt.Fprintf(&sb, "  %s: %v\n", k, v)
			seen[k] = true
		}
	}
	rest := make([]string, 0, len(user))
	for k := range user {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		fmt.Fprintf(&sb, "  %s: %v\n", k, user[k])
	}
	sb.WriteString("```\n")
	return sb.String()
}
