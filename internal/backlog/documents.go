// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backlog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pdiddy/backlog-exporter/pkg/types"
)

// GetProjectStatuses returns the status list of the configured project.
func (c *Client) GetProjectStatuses(ctx context.Context) ([]types.ProjectStatus, error) {
	var statuses []types.ProjectStatus
	path := "/projects/" + url.PathEscape(c.cfg.ProjectKey) + "/statuses"
	if err := c.getJSON(ctx, path, nil, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

// GetProjectID resolves the numeric id of the configured project key. The
// API offers no project-by-key lookup usable with document scopes, so the
// id is read from the first entry of the project's status list.
func (c *Client) GetProjectID(ctx context.Context) (int64, error) {
	statuses, err := c.GetProjectStatuses(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolving project %s: %w", c.cfg.ProjectKey, err)
	}
	if len(statuses) == 0 {
		return 0, fmt.Errorf("resolving project %s: %w", c.cfg.ProjectKey, ErrNoStatuses)
	}
	return statuses[0].ProjectID, nil
}

// ListDocumentsPage fetches one page of documents starting at offset.
func (c *Client) ListDocumentsPage(ctx context.Context, projectID int64, offset, count int) ([]types.Document, error) {
	if count < 1 || count > types.MaxPageSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPageSize, count)
	}
	if offset < 0 {
		return nil, fmt.Errorf("offset must not be negative: got %d", offset)
	}

	params := url.Values{
		"projectId[]": {types.ProjectIDString(projectID)},
		"offset":      {strconv.Itoa(offset)},
		"count":       {strconv.Itoa(count)},
	}
	var page []types.Document
	if err := c.getJSON(ctx, "/documents", params, &page); err != nil {
		return nil, err
	}
	return page, nil
}

// ListDocuments fetches every document of a project, count per page, until
// a page comes back shorter than count.
func (c *Client) ListDocuments(ctx context.Context, projectID int64, count int) ([]types.Document, error) {
	if count < 1 || count > types.MaxPageSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPageSize, count)
	}

	var docs []types.Document
	for offset := 0; ; offset += count {
		page, err := c.ListDocumentsPage(ctx, projectID, offset, count)
		if err != nil {
			return nil, fmt.Errorf("listing documents at offset %d: %w", offset, err)
		}
		docs = append(docs, page...)
		if len(page) < count {
			return docs, nil
		}
	}
}

// GetTree fetches the folder and document tree of a project.
func (c *Client) GetTree(ctx context.Context, projectID int64) (*types.DocumentTree, error) {
	params := url.Values{"projectIdOrKey": {types.ProjectIDString(projectID)}}
	var tree types.DocumentTree
	if err := c.getJSON(ctx, "/documents/tree", params, &tree); err != nil {
		return nil, err
	}
	return &tree, nil
}

// GetDocument fetches one document with its metadata and attachment list.
func (c *Client) GetDocument(ctx context.Context, id types.ID) (*types.Document, error) {
	var doc types.Document
	if err := c.getJSON(ctx, "/documents/"+url.PathEscape(id.String()), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetDocumentAttachments returns the attachments of a document. The API has
// no attachment listing endpoint; the list is the document's attachments
// field, empty when absent or malformed.
func (c *Client) GetDocumentAttachments(ctx context.Context, id types.ID) ([]types.Attachment, error) {
	doc, err := c.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc.Attachments, nil
}
