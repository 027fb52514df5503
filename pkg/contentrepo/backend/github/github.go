// Package github implements a backend on top of the GitHub contents API.
// Entry text lives as files in a hosted repository; every persist is one
// commit against the configured branch.
//
// GitHub has no native editorial workflow, so in-workflow entries are kept
// as JSON bundles under a dedicated tree (_editorial/<collection>/<slug>)
// and only move to their real path on publish.
package github

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
const Name = "github"

const (
	defaultAPIRoot = "https://api.github.com"
	defaultBranch  = "master"

	// workflowRoot is the repository tree holding unpublished entry
	// bundles.
	workflowRoot = "_editorial"
)

// Config options for the GitHub backend.
type Config struct {
	Repo        string // "owner/name", required
	Branch      string // target branch (default: master)
	APIRoot     string // API root override, for GitHub Enterprise
	Token       string // optional pre-provisioned access token
	MediaFolder string // repository folder media files are committed to
	HTTPClient  *http.Client

	// MediaStore, when set, receives media uploads instead of the
	// repository tree.
	MediaStore mediastore.Store
}

// Backend implements contentrepo.Backend against the GitHub API.
type Backend struct {
	cfg    Config
	client *http.Client
	token  string
}

// New creates a GitHub backend.
func New(cfg Config) (*Backend, error) {
	if cfg.Repo == "" || !strings.Contains(cfg.Repo, "/") {
		return nil, errors.New(`github backend requires repo in "owner/name" form`)
	}
	if cfg.Branch == "" {
		cfg.Branch = defaultBranch
	}
	if cfg.APIRoot == "" {
		cfg.APIRoot = defaultAPIRoot
	}
	if cfg.MediaFolder == "" {
		cfg.MediaFolder = "static/media"
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Backend{cfg: cfg, client: client, token: cfg.Token}, nil
}

func (b *Backend) AuthComponent() string { return "github-auth" }

// Authenticate validates the supplied token against /user and keeps it for
// subsequent calls.
func (b *Backend) Authenticate(ctx context.Context, creds contentrepo.Credentials) (*contentrepo.Session, error) {
	if creds.Token == "" {
		return nil, fmt.Errorf("%w: token is required", contentrepo.ErrAuth)
	}

	var user struct {
		Login string `json:"login"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	status, err := b.request(ctx, http.MethodGet, "/user", creds.Token, nil, &user)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, fmt.Errorf("%w: github rejected token", contentrepo.ErrAuth)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("github /user returned status %d", status)
	}

	b.token = creds.Token
	return &contentrepo.Session{
		Token:    creds.Token,
		Provider: Name,
		Name:     user.Name,
		Email:    user.Email,
		Extra:    map[string]any{"login": user.Login},
	}, nil
}

func (b *Backend) SetUser(sess *contentrepo.Session) {
	if sess != nil {
		b.token = sess.Token
	}
}

// contentItem is the GitHub contents-API representation of a file or
// directory entry.
type contentItem struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	SHA     string `json:"sha"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

func (b *Backend) EntriesByFolder(ctx context.Context, folder, extension string) ([]contentrepo.RawEntry, error) {
	items, err := b.listDir(ctx, folder)
	if err != nil {
		if errors.Is(err, contentrepo.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	suffix := "." + extension
	var entries []contentrepo.RawEntry
	for _, item := range items {
		if item.Type != "file" || !strings.HasSuffix(item.Name, suffix) {
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

// workflowBundle is the JSON document stored per unpublished entry.
type workflowBundle struct {
	Collection string `json:"collection"`
	Slug       string `json:"slug"`
	Path       string `json:"path"`
	Raw        string `json:"raw"`
	Status     string `json:"status"`
	UpdatedAt  string `json:"updated_at"`
}

func (b *Backend) UnpublishedEntries(ctx context.Context, page, perPage int) ([]contentrepo.RawEntry, error) {
	collections, err := b.listDir(ctx, workflowRoot)
	if err != nil {
		if errors.Is(err, contentrepo.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var entries []contentrepo.RawEntry
	for _, dir := range collections {
		if dir.Type != "dir" {
			continue
		}
		items, err := b.listDir(ctx, dir.Path)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if item.Type != "file" {
				continue
			}
			raw, err := b.loadBundle(ctx, item.Path)
			if err != nil {
				return nil, err
			}
			entries = append(entries, raw)
		}
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = len(entries)
	}
	start := (page - 1) * perPage
	if start >= len(entries) {
		return nil, nil
	}
	end := start + perPage
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end], nil
}

func (b *Backend) UnpublishedEntry(ctx context.Context, collection, slug string) (contentrepo.RawEntry, error) {
	return b.loadBundle(ctx, bundlePath(collection, slug))
}

func (b *Backend) PersistEntry(ctx context.Context, entry contentrepo.BackendEntry, media []contentrepo.MediaFile, meta contentrepo.PersistMeta) error {
	for _, m := range media {
		if err := b.persistMedia(ctx, m, meta.CommitMessage); err != nil {
			return err
		}
	}

	if meta.Unpublished {
		status := meta.Status
		if status == "" {
			status = contentrepo.StatusDraft
		}
		bundle := workflowBundle{
			Collection: meta.CollectionName,
			Slug:       entry.Slug,
			Path:       entry.Path,
			Raw:        entry.Raw,
			Status:     string(status),
			UpdatedAt:  time.Now().UTC().Format(time.RFC3339),
		}
		return b.writeBundle(ctx, bundle, meta.CommitMessage)
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
	raw, err := b.loadBundle(ctx, bundlePath(collection, slug))
	if err != nil {
		return err
	}
	bundle := workflowBundle{
		Collection: collection,
		Slug:       slug,
		Path:       raw.File.Path,
		Raw:        raw.Data,
		Status:     string(status),
		UpdatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	msg := fmt.Sprintf("Set %s/%s to %s", collection, slug, status)
	return b.writeBundle(ctx, bundle, msg)
}

func (b *Backend) PublishUnpublishedEntry(ctx context.Context, collection, slug string, status contentrepo.EditorialStatus) error {
	raw, err := b.loadBundle(ctx, bundlePath(collection, slug))
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Published %s/%s", collection, slug)
	if err := b.writeFile(ctx, raw.File.Path, []byte(raw.Data), msg); err != nil {
		return err
	}
	return b.DeleteEntry(ctx, bundlePath(collection, slug), msg)
}

func (b *Backend) DeleteEntry(ctx context.Context, filePath, commitMessage string) error {
	sha, err := b.fileSHA(ctx, filePath)
	if err != nil {
		return err
	}
	body := map[string]any{
		"message": commitMessage,
		"sha":     sha,
		"branch":  b.cfg.Branch,
	}
	status, err := b.request(ctx, http.MethodDelete, b.contentsPath(filePath), b.token, body, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: delete %s returned status %d", contentrepo.ErrPersist, filePath, status)
	}
	return nil
}

func (b *Backend) loadBundle(ctx context.Context, bundleFile string) (contentrepo.RawEntry, error) {
	raw, err := b.readFile(ctx, bundleFile)
	if err != nil {
		return contentrepo.RawEntry{}, err
	}
	var bundle workflowBundle
	if err := json.Unmarshal([]byte(raw), &bundle); err != nil {
		return contentrepo.RawEntry{}, fmt.Errorf("malformed workflow bundle %s: %w", bundleFile, err)
	}
	return contentrepo.RawEntry{
		File: contentrepo.RawFile{Path: bundle.Path},
		Data: bundle.Raw,
		Slug: bundle.Slug,
		MetaData: map[string]any{
			"collection": bundle.Collection,
			"status":     bundle.Status,
			"updated_at": bundle.UpdatedAt,
		},
	}, nil
}

func (b *Backend) writeBundle(ctx context.Context, bundle workflowBundle, message string) error {
	data, err := json.Marshal(bundle)
	if err != nil {
		return err
	}
	return b.writeFile(ctx, bundlePath(bundle.Collection, bundle.Slug), data, message)
}

func (b *Backend) listDir(ctx context.Context, dir string) ([]contentItem, error) {
	var items []contentItem
	status, err := b.request(ctx, http.MethodGet, b.contentsPath(dir), b.token, nil, &items)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", contentrepo.ErrNotFound, dir)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("list %s returned status %d", dir, status)
	}
	return items, nil
}

func (b *Backend) readFile(ctx context.Context, filePath string) (string, error) {
	var item contentItem
	status, err := b.request(ctx, http.MethodGet, b.contentsPath(filePath), b.token, nil, &item)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", contentrepo.ErrNotFound, filePath)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("read %s returned status %d", filePath, status)
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(item.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", filePath, err)
	}
	return string(decoded), nil
}

func (b *Backend) writeFile(ctx context.Context, filePath string, data []byte, message string) error {
	body := map[string]any{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(data),
		"branch":  b.cfg.Branch,
	}
	// An update needs the current blob SHA; a create must omit it.
	if sha, err := b.fileSHA(ctx, filePath); err == nil {
		body["sha"] = sha
	} else if !errors.Is(err, contentrepo.ErrNotFound) {
		return err
	}

	status, err := b.request(ctx, http.MethodPut, b.contentsPath(filePath), b.token, body, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return fmt.Errorf("%w: write %s returned status %d", contentrepo.ErrPersist, filePath, status)
	}
	return nil
}

func (b *Backend) fileSHA(ctx context.Context, filePath string) (string, error) {
	var item contentItem
	status, err := b.request(ctx, http.MethodGet, b.contentsPath(filePath), b.token, nil, &item)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", contentrepo.ErrNotFound, filePath)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("stat %s returned status %d", filePath, status)
	}
	return item.SHA, nil
}

func (b *Backend) contentsPath(p string) string {
	return fmt.Sprintf("/repos/%s/contents/%s?ref=%s", b.cfg.Repo, strings.TrimPrefix(p, "/"), url.QueryEscape(b.cfg.Branch))
}

// request performs one API call, decoding a JSON response into out when out
// is non-nil and the response carries a body. The HTTP status is returned
// for the caller to interpret; transport failures are errors.
func (b *Backend) request(ctx context.Context, method, apiPath, token string, body any, out any) (int, error) {
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
	req.Header.Set("Accept", "application/vnd.github+json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode github response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func bundlePath(collection, slug string) string {
	return path.Join(workflowRoot, collection, slug+".json")
}
