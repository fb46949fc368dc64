// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export mirrors a Backlog project's document tree onto the local
// filesystem. Each document becomes a directory holding document.md and its
// attachments.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/backlog-exporter/internal/fsutil"
	"github.com/pdiddy/backlog-exporter/internal/index"
	"github.com/pdiddy/backlog-exporter/internal/markdown"
	"github.com/pdiddy/backlog-exporter/internal/publish"
	"github.com/pdiddy/backlog-exporter/internal/tree"
	"github.com/pdiddy/backlog-exporter/pkg/types"
)

// DocumentFile is the name of the Markdown file written for each document.
const DocumentFile = "document.md"

// ErrNoStorage is returned when publishing is requested without a storage
// backend.
var ErrNoStorage = errors.New("publish requested but no storage configured")

// Source is the part of the Backlog client the exporter needs.
type Source interface {
	GetProjectID(ctx context.Context) (int64, error)
	GetTree(ctx context.Context, projectID int64) (*types.DocumentTree, error)
	GetDocument(ctx context.Context, id types.ID) (*types.Document, error)
	DownloadAttachmentFunc(ctx context.Context, documentID types.ID, attachmentID int64, destDir string, name func(derived string) string) (string, error)
}

// Result reports the outcome of an export pass.
type Result struct {
	RunID       string
	OutputDir   string
	Documents   int
	Attachments int
	Manifest    string
	Published   publish.Result
}

// Exporter runs export passes against one source.
type Exporter struct {
	src     Source
	cfg     types.ExportConfig
	project types.BacklogConfig
	out     io.Writer

	storage publish.Storage
	prefix  string

	now   func() time.Time
	newID func() string
}

// Option customises an Exporter.
type Option func(*Exporter)

// WithProgress sends progress lines to w. The default discards them.
func WithProgress(w io.Writer) Option {
	return func(e *Exporter) { e.out = w }
}

// WithStorage sets the publish target used when cfg.Publish is true.
func WithStorage(s publish.Storage, prefix string) Option {
	return func(e *Exporter) {
		e.storage = s
		e.prefix = prefix
	}
}

// New returns an exporter. project identifies the space and project in the
// export index.
func New(src Source, project types.BacklogConfig, cfg types.ExportConfig, opts ...Option) *Exporter {
	e := &Exporter{
		src:     src,
		cfg:     cfg,
		project: project,
		out:     io.Discard,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run performs one export pass. Directories for every document are created
// before any document is fetched. The first failing document or attachment
// aborts the run; rerunning overwrites earlier output.
func (e *Exporter) Run(ctx context.Context) (Result, error) {
	if e.cfg.Publish && e.storage == nil {
		return Result{}, ErrNoStorage
	}
	if err := index.CheckManifestFormat(e.cfg.ManifestFormat); err != nil {
		return Result{}, err
	}
	res := Result{RunID: e.newID(), OutputDir: e.cfg.OutputDir}

	projectID, err := e.src.GetProjectID(ctx)
	if err != nil {
		return res, err
	}
	docTree, err := e.src.GetTree(ctx, projectID)
	if err != nil {
		return res, fmt.Errorf("fetching document tree: %w", err)
	}

	entries := tree.Flatten(&docTree.ActiveTree)
	fmt.Fprintf(e.out, "found %d documents\n", len(entries))

	dirs := append([]string{e.cfg.OutputDir}, tree.Dirs(e.cfg.OutputDir, entries)...)
	if err := fsutil.EnsureDirs(dirs...); err != nil {
		return res, err
	}

	var store *index.Store
	if e.cfg.Index {
		store, err = index.Open(e.cfg.OutputDir)
		if err != nil {
			return res, err
		}
		defer store.Close()

		err = store.BeginRun(ctx, index.Run{
			ID:          res.RunID,
			ProjectKey:  e.project.ProjectKey,
			SpaceDomain: e.project.SpaceDomain,
			OutputDir:   e.cfg.OutputDir,
			StartedAt:   e.now(),
		})
		if err != nil {
			return res, err
		}
	}

	for i, entry := range entries {
		rec, err := e.exportDocument(ctx, entry)
		if err != nil {
			return res, fmt.Errorf("exporting document %s (%s): %w", entry.DocumentID, entry.Name, err)
		}
		res.Documents++
		res.Attachments += len(rec.Attachments)

		if store != nil {
			if err := store.RecordDocument(ctx, res.RunID, i, rec); err != nil {
				return res, err
			}
		}
	}

	if store != nil {
		if err := store.FinishRun(ctx, res.RunID, e.now(), res.Documents, res.Attachments); err != nil {
			return res, err
		}
		res.Manifest, err = store.WriteManifest(ctx, res.RunID, e.cfg.ManifestFormat)
		if err != nil {
			return res, fmt.Errorf("writing manifest: %w", err)
		}
	}

	fmt.Fprintf(e.out, "exported %d documents, %d attachments to %s\n", res.Documents, res.Attachments, e.cfg.OutputDir)

	if e.cfg.Publish {
		fmt.Fprintf(e.out, "publishing %s\n", e.cfg.OutputDir)
		pub, err := publish.Publish(ctx, e.cfg.OutputDir, e.prefix, e.storage, e.out, PublishExclude...)
		res.Published = pub
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

// PublishExclude lists export files that are not uploaded: the SQLite index
// and its journal files.
var PublishExclude = []string{index.DirName + "/index.db*"}

func (e *Exporter) exportDocument(ctx context.Context, entry tree.Entry) (index.DocumentRecord, error) {
	dir := entry.Dir(e.cfg.OutputDir)
	rel := filepath.ToSlash(filepath.Join(entry.Path...))

	fmt.Fprintf(e.out, "exporting: %s\n", rel)

	doc, err := e.src.GetDocument(ctx, entry.DocumentID)
	if err != nil {
		return index.DocumentRecord{}, err
	}
	content, err := RenderDocument(doc)
	if err != nil {
		return index.DocumentRecord{}, err
	}
	if err := fsutil.WriteString(filepath.Join(dir, DocumentFile), content); err != nil {
		return index.DocumentRecord{}, err
	}

	rec := index.DocumentRecord{
		ID:    entry.DocumentID.String(),
		Title: documentTitle(doc, entry),
		Path:  rel,
		Body:  doc.Body(),
	}
	if doc.Updated != nil {
		rec.Updated = doc.Updated.UTC().Format(time.RFC3339)
	}

	taken := newNameSet(DocumentFile)
	for _, c := range entry.Children {
		taken.add(c)
	}
	for _, att := range doc.Attachments {
		path, err := e.src.DownloadAttachmentFunc(ctx, entry.DocumentID, att.ID, dir, func(derived string) string {
			return taken.claim(att, derived)
		})
		if err != nil {
			return index.DocumentRecord{}, fmt.Errorf("downloading attachment %d: %w", att.ID, err)
		}
		name := filepath.Base(path)
		fmt.Fprintf(e.out, "  attachment: %s\n", name)
		rec.Attachments = append(rec.Attachments, index.AttachmentRecord{
			ID:   att.ID,
			Name: name,
			Path: rel + "/" + name,
			Size: att.Size,
		})
	}
	return rec, nil
}

// RenderDocument returns the document.md content: a title heading, the
// document's metadata as a key/value list in server field order (body
// fields omitted), and the body.
func RenderDocument(doc *types.Document) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.Title)

	if len(doc.Raw) > 0 {
		fields, err := markdown.Fields(doc.Raw, types.BodyFields...)
		if err != nil {
			return "", fmt.Errorf("rendering metadata: %w", err)
		}
		if len(fields) > 0 {
			if err := markdown.WriteKeyValues(&b, fields); err != nil {
				return "", err
			}
			b.WriteString("\n")
		}
	}

	if body := doc.Body(); body != "" {
		b.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// nameSet tracks the file names already used in one document directory,
// compared case-insensitively.
type nameSet map[string]bool

func newNameSet(names ...string) nameSet {
	s := make(nameSet, len(names))
	for _, n := range names {
		s.add(n)
	}
	return s
}

func (s nameSet) add(name string) { s[strings.ToLower(name)] = true }

func (s nameSet) has(name string) bool { return s[strings.ToLower(name)] }

// claim picks the file name for an attachment: its declared name, else the
// server-derived one, else its id. A name already used by document.md, a
// child directory or an earlier attachment gets the id prepended, plus a
// counter if that is taken too.
func (s nameSet) claim(att types.Attachment, derived string) string {
	id := strconv.FormatInt(att.ID, 10)
	name := att.Name
	if name == "" {
		name = derived
	}
	name = fsutil.SafeFilename(name, id)
	if s.has(name) {
		orig := name
		name = id + "_" + orig
		for k := 2; s.has(name); k++ {
			name = fmt.Sprintf("%s_%d_%s", id, k, orig)
		}
	}
	s.add(name)
	return name
}

func documentTitle(doc *types.Document, entry tree.Entry) string {
	if doc.Title != "" {
		return doc.Title
	}
	return entry.Name
}
