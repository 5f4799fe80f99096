package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"pdfgate/internal/access"
	"pdfgate/internal/model"
	"pdfgate/internal/pdfurl"
	"pdfgate/internal/renderer"
	"pdfgate/internal/repository"
	"pdfgate/internal/resolver"
	"pdfgate/internal/storage"
)

var (
	ErrIDRequired    = errors.New("config id and entry id are required")
	ErrEntryNotFound = errors.New("entry not found")
)

// Document is one rendered PDF ready to stream to the client.
type Document struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.ReadCloser
}

// ServeResult is the outcome of a document request: the authorization
// decision, plus the document itself when access was allowed.
type ServeResult struct {
	Decision model.Decision
	Document *Document
}

// EntryDocument is one downloadable document in an entry listing.
type EntryDocument struct {
	ConfigID    string `json:"config_id"`
	Name        string `json:"name"`
	ViewURL     string `json:"view_url"`
	DownloadURL string `json:"download_url"`
}

// PDFService defines the use cases for serving guarded documents.
type PDFService interface {
	// Serve authorizes the request and, when allowed, returns the rendered
	// document, from cache if one exists.
	Serve(ctx context.Context, configID, entryID string, actx *model.AuthorizationContext) (*ServeResult, error)

	// ListForEntry returns the documents currently applicable to an entry
	// that the requester is authorized to access, with signed view and
	// download URLs.
	ListForEntry(ctx context.Context, entryID string, actx *model.AuthorizationContext) ([]EntryDocument, error)

	// NotificationAttachments returns the applicable configurations that
	// target the given notification.
	NotificationAttachments(ctx context.Context, entry *model.Entry, notificationID string) ([]model.DocumentConfiguration, error)

	// ResolveLegacyLink maps an old-style link, which names a configuration
	// by template and 1-based position instead of by id, to the
	// configuration id that governs it.
	ResolveLegacyLink(ctx context.Context, entryID, templateID string, positionalIndex int) (string, error)
}

type pdfService struct {
	pipeline *access.Pipeline
	resolver *resolver.Resolver
	entries  repository.EntryStore
	store    storage.Storage
	renderer renderer.Renderer
	builder  *pdfurl.Builder
}

// NewPDFService constructs a new PDFService.
func NewPDFService(pipeline *access.Pipeline, res *resolver.Resolver, entries repository.EntryStore, store storage.Storage, rend renderer.Renderer, builder *pdfurl.Builder) PDFService {
	return &pdfService{
		pipeline: pipeline,
		resolver: res,
		entries:  entries,
		store:    store,
		renderer: rend,
		builder:  builder,
	}
}

func (s *pdfService) Serve(ctx context.Context, configID, entryID string, actx *model.AuthorizationContext) (*ServeResult, error) {
	if configID == "" || entryID == "" {
		return nil, ErrIDRequired
	}

	res, err := s.pipeline.Authorize(ctx, configID, entryID, actx)
	if err != nil {
		return nil, err
	}
	if !res.Decision.IsAllowed() {
		return &ServeResult{Decision: res.Decision}, nil
	}

	content, size, err := s.fetch(ctx, res.Config, res.Entry)
	if err != nil {
		return nil, err
	}

	return &ServeResult{
		Decision: res.Decision,
		Document: &Document{
			Filename:    Filename(res.Config, res.Entry),
			ContentType: "application/pdf",
			Size:        size,
			Content:     content,
		},
	}, nil
}

// fetch returns the rendered document, serving from the object-store cache
// when possible and rendering (then caching) otherwise.
func (s *pdfService) fetch(ctx context.Context, cfg *model.DocumentConfiguration, entry *model.Entry) (io.ReadCloser, int64, error) {
	key := cacheKey(cfg, entry)

	rc, info, err := s.store.Get(ctx, key)
	if err == nil {
		return rc, info.Size, nil
	}
	if !errors.Is(err, storage.ErrNotExist) {
		return nil, 0, fmt.Errorf("cache lookup: %w", err)
	}

	rendered, err := s.renderer.Render(ctx, cfg, entry)
	if err != nil {
		return nil, 0, fmt.Errorf("render document: %w", err)
	}
	defer rendered.Close()

	// Buffer the document so it can be cached and served from one render.
	buf, err := io.ReadAll(rendered)
	if err != nil {
		return nil, 0, fmt.Errorf("read rendered document: %w", err)
	}

	if _, err := s.store.Put(ctx, key, bytes.NewReader(buf), storage.PutObjectOptions{
		Size:        int64(len(buf)),
		ContentType: "application/pdf",
	}); err != nil {
		// A cache write failure is not fatal; the document still renders.
		return io.NopCloser(bytes.NewReader(buf)), int64(len(buf)), nil
	}
	return io.NopCloser(bytes.NewReader(buf)), int64(len(buf)), nil
}

func (s *pdfService) ListForEntry(ctx context.Context, entryID string, actx *model.AuthorizationContext) ([]EntryDocument, error) {
	if entryID == "" {
		return nil, ErrIDRequired
	}

	entry, err := s.entries.Get(ctx, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	configs, err := s.resolver.ActiveConfigsForEntry(ctx, entry.FormID, entry)
	if err != nil {
		return nil, err
	}

	docs := make([]EntryDocument, 0, len(configs))
	for _, cfg := range configs {
		// A signed URL bypasses the ownership checks; the pipeline must
		// allow this requester before one is minted.
		res, err := s.pipeline.Authorize(ctx, cfg.ID, entryID, actx)
		if err != nil {
			return nil, err
		}
		if !res.Decision.IsAllowed() {
			continue
		}

		viewURL, err := s.builder.Build(cfg.ID, entry.ID, pdfurl.Options{Signed: true})
		if err != nil {
			return nil, err
		}
		downloadURL, err := s.builder.Build(cfg.ID, entry.ID, pdfurl.Options{Download: true, Signed: true})
		if err != nil {
			return nil, err
		}
		docs = append(docs, EntryDocument{
			ConfigID:    cfg.ID,
			Name:        cfg.Name,
			ViewURL:     viewURL,
			DownloadURL: downloadURL,
		})
	}
	return docs, nil
}

func (s *pdfService) NotificationAttachments(ctx context.Context, entry *model.Entry, notificationID string) ([]model.DocumentConfiguration, error) {
	configs, err := s.resolver.ActiveConfigsForEntry(ctx, entry.FormID, entry)
	if err != nil {
		return nil, err
	}

	attached := make([]model.DocumentConfiguration, 0, len(configs))
	for _, cfg := range configs {
		if cfg.TargetsNotification(notificationID) {
			attached = append(attached, cfg)
		}
	}
	return attached, nil
}

func (s *pdfService) ResolveLegacyLink(ctx context.Context, entryID, templateID string, positionalIndex int) (string, error) {
	if entryID == "" || templateID == "" {
		return "", ErrIDRequired
	}

	entry, err := s.entries.Get(ctx, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrEntryNotFound
		}
		return "", err
	}

	return s.resolver.ResolveLegacy(ctx, entry.FormID, templateID, positionalIndex)
}

func cacheKey(cfg *model.DocumentConfiguration, entry *model.Entry) string {
	return "pdfs/" + entry.FormID + "/" + entry.ID + "/" + cfg.ID + ".pdf"
}

// Filename derives the download filename from the configuration's pattern.
// Supported tokens: {form_id}, {entry_id}, {name}. The result always ends
// in .pdf and never contains path separators.
func Filename(cfg *model.DocumentConfiguration, entry *model.Entry) string {
	pattern := cfg.FilenamePattern
	if pattern == "" {
		pattern = "document-{entry_id}"
	}

	name := strings.NewReplacer(
		"{form_id}", entry.FormID,
		"{entry_id}", entry.ID,
		"{name}", cfg.Name,
	).Replace(pattern)

	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '-'
		}
		return r
	}, name)

	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}
