package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/tree"
)

// RemoteConfig configures the REST backend
type RemoteConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// APIError is a non-2xx response of the companion service
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Unwrap maps well-known statuses to the model sentinels
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusConflict:
		return models.ErrNameConflict
	case http.StatusNotFound:
		return models.ErrNotFound
	}
	return nil
}

// Status is the answer of the status endpoint
type Status struct {
	Version   string `json:"version,omitempty"`
	Onboarded bool   `json:"onboarded"`
	Email     string `json:"email,omitempty"`
	DataDir   string `json:"data_dir,omitempty"`
	ServerURL string `json:"server_url,omitempty"`
}

// InitRequest sets up a datasite during onboarding
type InitRequest struct {
	Email     string `json:"email"`
	ServerURL string `json:"server_url,omitempty"`
	DataDir   string `json:"data_dir,omitempty"`
}

type itemsResponse struct {
	Items []*models.FileSystemItem `json:"items"`
}

type createRequest struct {
	Path      string          `json:"path"`
	Type      models.ItemType `json:"type"`
	Overwrite bool            `json:"overwrite,omitempty"`
}

type deleteRequest struct {
	Paths []string `json:"paths"`
}

type transferRequest struct {
	SourcePath string `json:"sourcePath"`
	NewPath    string `json:"newPath"`
	Overwrite  bool   `json:"overwrite,omitempty"`
}

type itemResponse struct {
	Item *models.FileSystemItem `json:"item"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Remote talks to the companion workspace service over HTTP. Every call
// is attempted once; failures are returned to the caller.
type Remote struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
	info  *TokenInfo
}

// NewRemote creates a REST backend
func NewRemote(cfg RemoteConfig) (*Remote, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("remote backend requires a url")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("invalid remote url: %w", err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	r := &Remote{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
	if err := r.SetToken(cfg.Token); err != nil {
		return nil, err
	}
	return r, nil
}

// SetToken replaces the bearer token; "" disables authentication
func (r *Remote) SetToken(token string) error {
	var info *TokenInfo
	if token != "" {
		parsed, err := ParseToken(token)
		if err != nil {
			return err
		}
		info = parsed
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token = token
	r.info = info
	return nil
}

// TokenInfo returns the decoded token, or nil without a token
func (r *Remote) TokenInfo() *TokenInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.info == nil {
		return nil
	}
	info := *r.info
	return &info
}

// Status reports whether the datasite is set up
func (r *Remote) Status(ctx context.Context) (*Status, error) {
	var status Status
	if err := r.do(ctx, http.MethodPost, "/v1/status", nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// InitDatasite performs the onboarding of a new datasite
func (r *Remote) InitDatasite(ctx context.Context, req InitRequest) error {
	if req.Email == "" {
		return &models.ValidationError{Field: "email", Message: "is required"}
	}
	return r.do(ctx, http.MethodPost, "/v1/init/datasite", nil, req, nil)
}

// List fetches the children of path down to depth
func (r *Remote) List(ctx context.Context, path string, depth int) (*models.FileSystemItem, error) {
	path = tree.Normalize(path)
	query := url.Values{}
	query.Set("path", path)
	query.Set("depth", strconv.Itoa(depth))

	var resp itemsResponse
	if err := r.do(ctx, http.MethodGet, "/v1/workspace/items", query, nil, &resp); err != nil {
		return nil, err
	}

	folder := &models.FileSystemItem{
		ID:         PathID(path),
		Name:       tree.Base(path),
		Path:       path,
		Type:       models.TypeFolder,
		SyncStatus: models.StatusSynced,
		Children:   []*models.FileSystemItem{},
	}
	for _, item := range resp.Items {
		if item != nil {
			folder.Children = append(folder.Children, normalize(item, path))
		}
	}
	return folder, nil
}

// Create makes an empty file or folder
func (r *Remote) Create(ctx context.Context, path string, typ models.ItemType) (*models.FileSystemItem, error) {
	req := createRequest{Path: tree.Normalize(path), Type: typ}
	var resp itemResponse
	if err := r.do(ctx, http.MethodPost, "/v1/workspace/items", nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.Item, nil
}

// Write uploads file content
func (r *Remote) Write(ctx context.Context, path string, content io.Reader, size int64, opts Options) (*models.FileSystemItem, error) {
	query := url.Values{}
	query.Set("path", tree.Normalize(path))
	if opts.Overwrite {
		query.Set("overwrite", "true")
	}

	req, err := r.newRequest(ctx, http.MethodPut, "/v1/workspace/content", query, content)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if size >= 0 {
		req.ContentLength = size
	}

	var resp itemResponse
	if err := r.send(req, &resp); err != nil {
		return nil, err
	}
	return resp.Item, nil
}

// Delete removes items
func (r *Remote) Delete(ctx context.Context, paths []string) error {
	req := deleteRequest{Paths: make([]string, len(paths))}
	for i, p := range paths {
		req.Paths[i] = tree.Normalize(p)
	}
	return r.do(ctx, http.MethodDelete, "/v1/workspace/items", nil, req, nil)
}

// Move relocates or renames src
func (r *Remote) Move(ctx context.Context, src, dst string, opts Options) (*models.FileSystemItem, error) {
	return r.transfer(ctx, "/v1/workspace/items/move", src, dst, opts)
}

// Copy duplicates src
func (r *Remote) Copy(ctx context.Context, src, dst string, opts Options) (*models.FileSystemItem, error) {
	return r.transfer(ctx, "/v1/workspace/items/copy", src, dst, opts)
}

// Close releases idle connections
func (r *Remote) Close() error {
	r.httpClient.CloseIdleConnections()
	return nil
}

func (r *Remote) transfer(ctx context.Context, endpoint, src, dst string, opts Options) (*models.FileSystemItem, error) {
	req := transferRequest{SourcePath: tree.Normalize(src), NewPath: tree.Normalize(dst), Overwrite: opts.Overwrite}
	var resp itemResponse
	if err := r.do(ctx, http.MethodPost, endpoint, nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.Item, nil
}

// do sends a JSON request and decodes the JSON answer into out (if set)
func (r *Remote) do(ctx context.Context, method, endpoint string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := r.newRequest(ctx, method, endpoint, query, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return r.send(req, out)
}

func (r *Remote) newRequest(ctx context.Context, method, endpoint string, query url.Values, body io.Reader) (*http.Request, error) {
	r.mu.RLock()
	token, info := r.token, r.info
	r.mu.RUnlock()
	if info != nil && info.Expired(time.Now()) {
		return nil, ErrTokenExpired
	}

	u := r.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (r *Remote) send(req *http.Request, out any) error {
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errResp errorResponse
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil {
			apiErr.Message = errResp.Error
		}
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, apiErr)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// normalize fills in what the service may omit: ids and consistent paths
func normalize(item *models.FileSystemItem, parentPath string) *models.FileSystemItem {
	if item.Name == "" {
		item.Name = tree.Base(item.Path)
	}
	item.Path = tree.Join(parentPath, item.Name)
	if item.ID == "" {
		item.ID = PathID(item.Path)
	}
	if item.SyncStatus == "" {
		item.SyncStatus = models.StatusSynced
	}
	if item.IsFolder() && item.Children == nil {
		item.Children = []*models.FileSystemItem{}
	}
	for i, child := range item.Children {
		item.Children[i] = normalize(child, item.Path)
	}
	return item
}
