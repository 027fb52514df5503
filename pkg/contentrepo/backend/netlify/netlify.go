// Package netlify implements a backend against a netlify-git-api style
// service: a thin HTTP layer over a git repository exposing password-grant
// token auth and a /files tree.
//
// The service has no editorial workflow; the workflow verbs fail with
// contentrepo.ErrWorkflowUnsupported and callers fall back to direct
// publishing.
package netlify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/contentdeck/content-repo/pkg/contentrepo"
	"github.com/contentdeck/content-repo/pkg/contentrepo/mediastore"
)

// Name is the backend's configuration identifier.
const Name = "netlify-git"

// Config options for the netlify-git backend.
type Config struct {
	APIRoot     string // base URL of the netlify-git-api service, required
	Branch      string // target branch (default: master)
	MediaFolder string // repository folder media files are committed to
	HTTPClient  *http.Client

	// MediaStore, when set, receives media uploads instead of the
	// repository tree.
	MediaStore mediastore.Store
}

// Backend implements contentrepo.Backend against a netlify-git-api service.
type Backend struct {
	cfg    Config
	client *http.Client
	token  string
}

// New creates a netlify-git backend.
func New(cfg Config) (*Backend, error) {
	if cfg.APIRoot == "" {
		return nil, errors.New("netlify-git backend requires an api root")
	}
	cfg.APIRoot = strings.TrimSuffix(cfg.APIRoot, "/")
	if cfg.Branch == "" {
		cfg.Branch = "master"
	}
	if cfg.MediaFolder == "" {
		cfg.MediaFolder = "static/media"
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Backend{cfg: cfg, client: client}, nil
}

func (b *Backend) AuthComponent() string { return "netlify-auth" }

// Authenticate exchanges email/password for an access token using the
// password grant.
func (b *Backend) Authenticate(ctx context.Context, creds contentrepo.Credentials) (*contentrepo.Session, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", creds.Email)
	form.Set("password", creds.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.APIRoot+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("netlify token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: netlify rejected credentials", contentrepo.ErrAuth)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("netlify /token returned status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}

	b.token = body.AccessToken
	return &contentrepo.Session{
		Token:    body.AccessToken,
		Provider: Name,
		Email:    creds.Email,
	}, nil
}

func (b *Backend) SetUser(sess *contentrepo.Session) {
	if sess != nil {
		b.token = sess.Token
	}
}

type fileItem struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

func (b *Backend) EntriesByFolder(ctx context.Context, folder, extension string) ([]contentrepo.RawEntry, error) {
	var items []fileItem
	status, err := b.request(ctx, http.MethodGet, "/files/"+strings.TrimPrefix(folder, "/"), nil, &items)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("list %s returned status %d", folder, status)
	}

	suffix := "." + extension
	var entries []contentrepo.RawEntry
	for _, item := range items {
		if item.Type == "dir" || !strings.HasSuffix(item.Name, suffix) {
			continue
		}
		raw, err := b.readFile(ctx, item.Path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, contentrepo.RawEntry{
			File: contentrepo.RawFile{Path: item.Path},
			Data: raw,
		})
	}
	return entries, nil
}

func (b *Backend) EntriesByFiles(ctx context.Context, files []contentrepo.CollectionFile) ([]contentrepo.RawEntry, error) {
	entries := make([]contentrepo.RawEntry, 0, len(files))
	for _, cf := range files {
		raw, err := b.readFile(ctx, cf.File)
		if err != nil {
			return nil, err
		}
		entries = append(entries, contentrepo.RawEntry{
			File: contentrepo.RawFile{Path: cf.File, Label: cf.Label},
			Data: raw,
			Slug: cf.Name,
		})
	}
	return entries, nil
}

func (b *Backend) Entry(ctx context.Context, c *contentrepo.Collection, slug, filePath string) (contentrepo.RawEntry, error) {
	raw, err := b.readFile(ctx, filePath)
	if err != nil {
		return contentrepo.RawEntry{}, err
	}
	return contentrepo.RawEntry{
		File: contentrepo.RawFile{Path: filePath},
		Data: raw,
		Slug: slug,
	}, nil
}

func (b *Backend) UnpublishedEntries(ctx context.Context, page, perPage int) ([]contentrepo.RawEntry, error) {
	return nil, contentrepo.ErrWorkflowUnsupported
}

func (b *Backend) UnpublishedEntry(ctx context.Context, collection, slug string) (contentrepo.RawEntry, error) {
	return contentrepo.RawEntry{}, contentrepo.ErrWorkflowUnsupported
}

func (b *Backend) PersistEntry(ctx context.Context, entry contentrepo.BackendEntry, media []contentrepo.MediaFile, meta contentrepo.PersistMeta) error {
	if meta.Unpublished {
		return contentrepo.ErrWorkflowUnsupported
	}

	for _, m := range media {
		if err := b.persistMedia(ctx, m, meta.CommitMessage); err != nil {
			return err
		}
	}
	return b.writeFile(ctx, entry.Path, []byte(entry.Raw), meta.CommitMessage)
}

func (b *Backend) persistMedia(ctx context.Context, m contentrepo.MediaFile, message string) error {
	if b.cfg.MediaStore != nil {
		if err := b.cfg.MediaStore.Upload(ctx, m.Name, bytes.NewReader(m.Data), m.ContentType); err != nil {
			return fmt.Errorf("%w: media %s: %v", contentrepo.ErrPersist, m.Name, err)
		}
		return nil
	}
	return b.writeFile(ctx, path.Join(b.cfg.MediaFolder, m.Name), m.Data, message)
}

func (b *Backend) UpdateUnpublishedEntryStatus(ctx context.Context, collection, slug string, status contentrepo.EditorialStatus) error {
	return contentrepo.ErrWorkflowUnsupported
}

func (b *Backend) PublishUnpublishedEntry(ctx context.Context, collection, slug string, status contentrepo.EditorialStatus) error {
	return contentrepo.ErrWorkflowUnsupported
}

func (b *Backend) DeleteEntry(ctx context.Context, filePath, commitMessage string) error {
	body := map[string]any{"message": commitMessage, "branch": b.cfg.Branch}
	status, err := b.request(ctx, http.MethodDelete, "/files/"+strings.TrimPrefix(filePath, "/"), body, nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("%w: %s", contentrepo.ErrNotFound, filePath)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: delete %s returned status %d", contentrepo.ErrPersist, filePath, status)
	}
	return nil
}

func (b *Backend) readFile(ctx context.Context, filePath string) (string, error) {
	var item fileItem
	status, err := b.request(ctx, http.MethodGet, "/files/"+strings.TrimPrefix(filePath, "/"), nil, &item)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", contentrepo.ErrNotFound, filePath)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("read %s returned status %d", filePath, status)
	}

	decoded, err := base64.StdEncoding.DecodeString(item.Content)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", filePath, err)
	}
	return string(decoded), nil
}

func (b *Backend) writeFile(ctx context.Context, filePath string, data []byte, message string) error {
	body := map[string]any{
		"content": base64.StdEncoding.EncodeToString(data),
		"message": message,
		"branch":  b.cfg.Branch,
	}
	status, err := b.request(ctx, http.MethodPut, "/files/"+strings.TrimPrefix(filePath, "/"), body, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return fmt.Errorf("%w: write %s returned status %d", contentrepo.ErrPersist, filePath, status)
	}
	return nil
}

func (b *Backend) request(ctx context.Context, method, apiPath string, body any, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.cfg.APIRoot+apiPath, reader)
	if err != nil {
		return 0, err
	}
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("netlify request failed: %w", err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode netlify response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
