// Package petclient is a Go client of the virtual pet REST API.
package petclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/limbo/virtualpet/pkg/entity"
	"github.com/limbo/virtualpet/pkg/httputil"
)

const (
	DefaultTimeout = 10 * time.Second
	maxBodySize    = 1 << 20
)

type Action string

const (
	Feed Action = "feed"
	Wash Action = "wash"
	Play Action = "play"
)

type AuthResponse struct {
	Token    string   `json:"token"`
	UserID   string   `json:"uid"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// ActionResult is the pet after an accepted care action.
type ActionResult struct {
	entity.Pet
	Warnings []string `json:"warnings"`
	Message  string   `json:"message"`
}

type PetList = httputil.ListEnvelope[entity.Pet]
type UserList = httputil.ListEnvelope[entity.User]

type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithSession(s *Session) Option {
	return func(c *Client) { c.session = s }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		session: NewSession(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Session() *Session {
	return c.session
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", false, nil, nil)
}

func (c *Client) Register(ctx context.Context, username, email, password string) (*AuthResponse, error) {
	return c.authenticate(ctx, "/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	return c.authenticate(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (c *Client) authenticate(ctx context.Context, path string, body map[string]string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, path, false, body, &resp); err != nil {
		return nil, err
	}
	if err := c.session.Set(resp.Token); err != nil {
		return nil, fmt.Errorf("server returned an unreadable token: %w", err)
	}
	return &resp, nil
}

func (c *Client) Logout() {
	c.session.Invalidate()
}

func (c *Client) ListPets(ctx context.Context, page, limit int) (*PetList, error) {
	var list PetList
	if err := c.do(ctx, http.MethodGet, "/pets"+pageQuery(nil, page, limit), true, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) GetPet(ctx context.Context, id uuid.UUID) (*entity.Pet, error) {
	return c.getPet(ctx, "/pets/"+id.String())
}

func (c *Client) CreatePet(ctx context.Context, name string, breed entity.Breed) (*entity.Pet, error) {
	var pet entity.Pet
	err := c.do(ctx, http.MethodPost, "/pets", true, map[string]string{"name": name, "breed": string(breed)}, &pet)
	if err != nil {
		return nil, err
	}
	return &pet, nil
}

func (c *Client) RenamePet(ctx context.Context, id uuid.UUID, name string) (*entity.Pet, error) {
	var pet entity.Pet
	if err := c.do(ctx, http.MethodPut, "/pets/"+id.String(), true, map[string]string{"name": name}, &pet); err != nil {
		return nil, err
	}
	return &pet, nil
}

func (c *Client) DeletePet(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/pets/"+id.String(), true, nil, nil)
}

func (c *Client) Act(ctx context.Context, id uuid.UUID, action Action) (*ActionResult, error) {
	return c.act(ctx, "/pets/"+id.String(), action)
}

func (c *Client) Feed(ctx context.Context, id uuid.UUID) (*ActionResult, error) {
	return c.Act(ctx, id, Feed)
}

func (c *Client) Wash(ctx context.Context, id uuid.UUID) (*ActionResult, error) {
	return c.Act(ctx, id, Wash)
}

func (c *Client) Play(ctx context.Context, id uuid.UUID) (*ActionResult, error) {
	return c.Act(ctx, id, Play)
}

func (c *Client) ListUsers(ctx context.Context, page, limit int) (*UserList, error) {
	var list UserList
	if err := c.do(ctx, http.MethodGet, "/admin/users"+pageQuery(nil, page, limit), true, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := c.do(ctx, http.MethodGet, "/admin/users/"+id.String(), true, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/admin/users/"+id.String(), true, nil, nil)
}

func (c *Client) ListUserPets(ctx context.Context, userID uuid.UUID, page, limit int) (*PetList, error) {
	var list PetList
	path := "/admin/users/" + userID.String() + "/pets" + pageQuery(nil, page, limit)
	if err := c.do(ctx, http.MethodGet, path, true, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) DeleteUserPet(ctx context.Context, userID, petID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/admin/users/"+userID.String()+"/pets/"+petID.String(), true, nil, nil)
}

// ListAllPets lists every pet. A nil ownerID lists pets of all users.
func (c *Client) ListAllPets(ctx context.Context, ownerID *uuid.UUID, page, limit int) (*PetList, error) {
	q := url.Values{}
	if ownerID != nil {
		q.Set("ownerId", ownerID.String())
	}
	var list PetList
	if err := c.do(ctx, http.MethodGet, "/admin/pets"+pageQuery(q, page, limit), true, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) AdminGetPet(ctx context.Context, id uuid.UUID) (*entity.Pet, error) {
	return c.getPet(ctx, "/admin/pets/"+id.String())
}

func (c *Client) AdminDeletePet(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/admin/pets/"+id.String(), true, nil, nil)
}

func (c *Client) AdminAct(ctx context.Context, id uuid.UUID, action Action) (*ActionResult, error) {
	return c.act(ctx, "/admin/pets/"+id.String(), action)
}

func (c *Client) getPet(ctx context.Context, path string) (*entity.Pet, error) {
	var pet entity.Pet
	if err := c.do(ctx, http.MethodGet, path, true, nil, &pet); err != nil {
		return nil, err
	}
	return &pet, nil
}

// act never guesses the outcome of an action it could not confirm. On a
// transport failure or a server error it refetches the pet and reports it in
// a ResyncError.
func (c *Client) act(ctx context.Context, petPath string, action Action) (*ActionResult, error) {
	var res ActionResult
	err := c.do(ctx, http.MethodPost, petPath+"/actions/"+string(action), true, nil, &res)
	if err == nil {
		if res.Warnings == nil {
			res.Warnings = []string{}
		}
		return &res, nil
	}
	if !outcomeUnknown(err) {
		return nil, err
	}
	current, ferr := c.getPet(ctx, petPath)
	if ferr != nil {
		return nil, errors.Join(err, ferr)
	}
	return nil, &ResyncError{Cause: err, Current: current}
}

func outcomeUnknown(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError
	}
	var rej *RejectionError
	if errors.As(err, &rej) || errors.Is(err, ErrUnauthenticated) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func pageQuery(q url.Values, page, limit int) string {
	if q == nil {
		q = url.Values{}
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func (c *Client) do(ctx context.Context, method, path string, auth bool, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := sonic.ConfigDefault.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		token := c.session.Token()
		if token == "" {
			return ErrUnauthenticated
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.responseError(resp.StatusCode, raw, auth)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := sonic.ConfigDefault.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) responseError(status int, raw []byte, auth bool) error {
	var body httputil.ErrorResponse
	if err := sonic.ConfigDefault.Unmarshal(raw, &body); err != nil || body.Message == "" {
		body.Message = strings.TrimSpace(string(raw))
	}
	if status == http.StatusUnauthorized && auth {
		c.session.Invalidate()
	}
	if body.Reason != "" {
		return &RejectionError{Status: status, Reason: body.Reason, Message: body.Message}
	}
	return &APIError{Status: status, Message: body.Message, Fields: body.Errors}
}
