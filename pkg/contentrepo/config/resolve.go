package config

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contentdeck/content-repo/pkg/contentrepo"
	githubbackend "github.com/contentdeck/content-repo/pkg/contentrepo/backend/github"
	netlifybackend "github.com/contentdeck/content-repo/pkg/contentrepo/backend/netlify"
	"github.com/contentdeck/content-repo/pkg/contentrepo/backend/testrepo"
	"github.com/contentdeck/content-repo/pkg/contentrepo/mediastore"
	memorymedia "github.com/contentdeck/content-repo/pkg/contentrepo/mediastore/memory"
	s3media "github.com/contentdeck/content-repo/pkg/contentrepo/mediastore/s3"
	"github.com/contentdeck/content-repo/pkg/contentrepo/sessionstore"
)

// Resolve constructs the facade for the configured backend.
//
// The backend name is a closed enumeration; an unrecognized or empty name
// fails with contentrepo.ErrUnknownBackend at construction, never at call
// time. A configuration without a backend section resolves to no facade at
// all: (nil, nil), leaving the caller unauthenticated-by-design rather than
// failed.
func Resolve(ctx context.Context, cfg *Config, opts ...contentrepo.Option) (contentrepo.Service, error) {
	if cfg.Backend == nil {
		return nil, nil
	}

	media, err := buildMediaStore(cfg.Media)
	if err != nil {
		return nil, err
	}

	backend, err := buildBackend(cfg.Backend, media)
	if err != nil {
		return nil, err
	}

	store, err := buildSessionStore(ctx, cfg.Session)
	if err != nil {
		return nil, err
	}

	options := []contentrepo.Option{
		contentrepo.WithBackendName(cfg.Backend.Name),
		contentrepo.WithPublishMode(cfg.PublishMode),
		contentrepo.WithSessionStore(store),
	}
	options = append(options, opts...)

	return contentrepo.New(backend, options...)
}

func buildBackend(bc *BackendConfig, media mediastore.Store) (contentrepo.Backend, error) {
	switch bc.Name {
	case testrepo.Name:
		var options []testrepo.Option
		if media != nil {
			options = append(options, testrepo.WithMediaStore(media))
		}
		return testrepo.New(options...), nil
	case githubbackend.Name:
		return githubbackend.New(githubbackend.Config{
			Repo:        bc.Repo,
			Branch:      bc.Branch,
			APIRoot:     bc.APIRoot,
			Token:       bc.Token,
			MediaFolder: bc.MediaFolder,
			MediaStore:  media,
		})
	case netlifybackend.Name:
		return netlifybackend.New(netlifybackend.Config{
			APIRoot:     bc.APIRoot,
			Branch:      bc.Branch,
			MediaFolder: bc.MediaFolder,
			MediaStore:  media,
		})
	default:
		return nil, fmt.Errorf("%w: %q", contentrepo.ErrUnknownBackend, bc.Name)
	}
}

// buildMediaStore resolves the configured media store. No configuration
// means no override: the backend keeps its own media handling.
func buildMediaStore(mc MediaConfig) (mediastore.Store, error) {
	switch mc.Store {
	case "":
		return nil, nil
	case "memory":
		return memorymedia.New(), nil
	case "s3":
		return s3media.New(s3media.Config{
			Region:          mc.Region,
			Bucket:          mc.Bucket,
			AccessKeyID:     mc.AccessKeyID,
			SecretAccessKey: mc.SecretAccessKey,
			Endpoint:        mc.Endpoint,
			UsePathStyle:    mc.UsePathStyle,
			KeyPrefix:       mc.KeyPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown media store %q", mc.Store)
	}
}

func buildSessionStore(ctx context.Context, sc SessionConfig) (contentrepo.SessionStore, error) {
	switch sc.Store {
	case "", "memory":
		return sessionstore.NewMemory(), nil
	case "sqlite":
		return sessionstore.NewSQLite(sc.Path)
	case "postgres":
		pool, err := pgxpool.New(ctx, sc.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect session database: %w", err)
		}
		return sessionstore.NewPostgres(ctx, pool)
	default:
		return nil, fmt.Errorf("unknown session store %q", sc.Store)
	}
}
