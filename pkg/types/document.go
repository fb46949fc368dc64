// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ID is an opaque Backlog identifier. The API returns document ids as
// strings and most other ids as integers; both decode into ID.
type ID string

// UnmarshalJSON accepts a JSON string, a JSON number, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the identifier text.
func (id ID) String() string { return string(id) }

// User is the creator or last editor of a document.
type User struct {
	ID          int64  `json:"id" yaml:"id"`
	UserID      string `json:"userId,omitempty" yaml:"user_id,omitempty"`
	Name        string `json:"name" yaml:"name"`
	MailAddress string `json:"mailAddress,omitempty" yaml:"mail_address,omitempty"`
}

// Tag labels a document.
type Tag struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Attachment is a file attached to a document. Content is fetched on demand.
type Attachment struct {
	ID          int64      `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Size        int64      `json:"size,omitempty" yaml:"size,omitempty"`
	CreatedUser *User      `json:"createdUser,omitempty" yaml:"created_user,omitempty"`
	Created     *time.Time `json:"created,omitempty" yaml:"created,omitempty"`
}

// Document is a Backlog document as returned by the list and get endpoints.
type Document struct {
	ID        ID     `json:"id" yaml:"id"`
	ProjectID int64  `json:"projectId" yaml:"project_id"`
	Title     string `json:"title" yaml:"title"`

	// Plain is the Markdown body. Older payloads use Content or Text instead.
	Plain   string `json:"plain,omitempty" yaml:"plain,omitempty"`
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
	Text    string `json:"text,omitempty" yaml:"text,omitempty"`

	// RichBody is the editor's structured representation, kept verbatim.
	RichBody json.RawMessage `json:"json,omitempty" yaml:"-"`

	StatusID    int64        `json:"statusId,omitempty" yaml:"status_id,omitempty"`
	Emoji       string       `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	Attachments []Attachment `json:"attachments" yaml:"attachments"`
	Tags        []Tag        `json:"tags,omitempty" yaml:"tags,omitempty"`
	CreatedUser *User        `json:"createdUser,omitempty" yaml:"created_user,omitempty"`
	Created     *time.Time   `json:"created,omitempty" yaml:"created,omitempty"`
	UpdatedUser *User        `json:"updatedUser,omitempty" yaml:"updated_user,omitempty"`
	Updated     *time.Time   `json:"updated,omitempty" yaml:"updated,omitempty"`

	// Raw is the JSON object exactly as the server sent it.
	Raw json.RawMessage `json:"-" yaml:"-"`
}

// UnmarshalJSON decodes a document and keeps the raw payload. A missing or
// malformed attachments field yields an empty attachment list rather than
// an error.
func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	var wire struct {
		plain
		Attachments json.RawMessage `json:"attachments"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*d = Document(wire.plain)

	d.Attachments = []Attachment{}
	if len(wire.Attachments) > 0 {
		var atts []Attachment
		if err := json.Unmarshal(wire.Attachments, &atts); err == nil && atts != nil {
			d.Attachments = atts
		}
	}

	d.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// Body returns the document text, preferring the Markdown body.
func (d *Document) Body() string {
	switch {
	case d.Plain != "":
		return d.Plain
	case d.Content != "":
		return d.Content
	default:
		return d.Text
	}
}

// BodyFields lists the payload keys that carry the document body.
var BodyFields = []string{"plain", "content", "text", "json"}

// TreeNode is a folder or document in the document tree. Folders may carry
// no identifier; documents always do.
type TreeNode struct {
	ID       ID         `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string     `json:"name" yaml:"name"`
	Emoji    string     `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	Children []TreeNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// IsDocument reports whether the node carries a document identifier.
func (n *TreeNode) IsDocument() bool {
	return n.ID != ""
}

// DocumentTree is the response of the document tree endpoint.
type DocumentTree struct {
	ProjectID  ID        `json:"projectId" yaml:"project_id"`
	ActiveTree TreeNode  `json:"activeTree" yaml:"active_tree"`
	TrashTree  *TreeNode `json:"trashTree,omitempty" yaml:"trash_tree,omitempty"`
}

// ProjectStatus is one entry of a project's issue status list. It is the
// cheapest endpoint that reveals the numeric project id for a project key.
type ProjectStatus struct {
	ID           int64  `json:"id" yaml:"id"`
	ProjectID    int64  `json:"projectId" yaml:"project_id"`
	Name         string `json:"name" yaml:"name"`
	Color        string `json:"color,omitempty" yaml:"color,omitempty"`
	DisplayOrder int    `json:"displayOrder" yaml:"display_order"`
}

// ProjectIDString formats a numeric project id for use in query strings.
func ProjectIDString(id int64) string {
	return strconv.FormatInt(id, 10)
}
