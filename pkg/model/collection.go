package model

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/archivelab/coral/internal/logger"
	"github.com/archivelab/coral/pkg/notify"
)

// Collection is a namespace directory entry. Collections are keyed by their
// (container, name) pair; the root collection is the only entry flagged
// IsRoot and lives under the sentinel (RootContainer, RootName) pair.
type Collection struct {
	ID         string            `json:"id"`
	Container  string            `json:"container"`
	Name       string            `json:"name"`
	Metadata   map[string]string `json:"metadata"`
	CreateTS   time.Time         `json:"create_ts"`
	ModifiedTS time.Time         `json:"modified_ts"`
	IsRoot     bool              `json:"is_root"`

	AccessLists
}

// Path returns the canonical full path of the collection.
func (c *Collection) Path() string {
	if c.IsRoot {
		return RootPath
	}
	return Merge(c.Container, c.Name)
}

// ParentPath returns the path of the containing collection, or "" for the
// root collection, which has no parent.
func (c *Collection) ParentPath() string {
	if c.IsRoot {
		return ""
	}
	return c.Container
}

// GetMetadata returns the collection's metadata in its public decoded form.
func (c *Collection) GetMetadata() map[string]string {
	return decodeMetadata(c.Metadata)
}

// MetadataList returns the metadata as a key-sorted list of decoded entries.
func (c *Collection) MetadataList() []MetadataEntry {
	return metadataToList(c.Metadata)
}

// UserCan reports whether the principal may perform the action on this
// collection.
func (c *Collection) UserCan(p Principal, action Action) bool {
	return UserCan(p, c.AccessLists, action)
}

// ToDict projects the collection onto the generic map shape used by API
// payloads. When a principal is supplied the projection carries its
// per-action permissions.
func (c *Collection) ToDict(p *Principal) map[string]any {
	d := map[string]any{
		"id":        c.ID,
		"name":      c.Name,
		"container": c.Container,
		"path":      c.Path(),
		"created":   c.CreateTS.UTC().Format(TimeLayout),
		"modified":  c.ModifiedTS.UTC().Format(TimeLayout),
		"metadata":  c.MetadataList(),
	}
	if p != nil {
		d["can_read"] = c.UserCan(*p, ActionRead)
		d["can_write"] = c.UserCan(*p, ActionWrite)
		d["can_edit"] = c.UserCan(*p, ActionEdit)
		d["can_delete"] = c.UserCan(*p, ActionDelete)
	}
	return d
}

// SearchID implements search.Document.
func (c *Collection) SearchID() string { return c.ID }

// SearchType implements search.Document.
func (c *Collection) SearchType() string { return classCollection }

// SearchField returns the named indexable field. Unknown names fall back to
// the decoded metadata value of the same key.
func (c *Collection) SearchField(field string) string {
	switch field {
	case "id":
		return c.ID
	case "name":
		return c.Name
	case "container":
		return c.Container
	case "path":
		return c.Path()
	default:
		return decodeMetaValue(c.Metadata[field])
	}
}

// state builds the notification snapshot of the collection.
func (c *Collection) state() notify.State {
	return notify.State{
		"id":          c.ID,
		"container":   c.Container,
		"name":        c.Name,
		"create_ts":   c.CreateTS.UTC().Format(TimeLayout),
		"modified_ts": c.ModifiedTS.UTC().Format(TimeLayout),
		"metadata":    c.GetMetadata(),
	}
}

// CollectionUpdate carries the mutable parts of a collection. Nil fields are
// left unchanged.
type CollectionUpdate struct {
	Metadata map[string]string
	Access   *AccessLists
}

// getCollection loads a collection row; (nil, nil) when the row is absent.
func (m *Model) getCollection(ctx context.Context, container, name string) (*Collection, error) {
	var c Collection
	found, err := m.getJSON(ctx, keyCollection(container, name), &c)
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

// getCollectionByPath resolves a canonical path to its collection row,
// short-circuiting "/" to the root sentinel. (nil, nil) when absent.
func (m *Model) getCollectionByPath(ctx context.Context, path string) (*Collection, error) {
	path = Normalize(path)
	if path == RootPath {
		return m.getCollection(ctx, RootContainer, RootName)
	}
	container, name := Split(path)
	return m.getCollection(ctx, container, name)
}

// CreateRoot creates the root collection.
//
// The operation is not idempotent: a second call writes a fresh root row
// with a new id over the old one. Bootstrap code must look the root up
// before creating it.
func (m *Model) CreateRoot(ctx context.Context) (c *Collection, err error) {
	start := time.Now()
	defer func() { m.observe("create_root", start, err) }()

	now := time.Now().UTC()
	c = &Collection{
		ID:         NewID(),
		Container:  RootContainer,
		Name:       RootName,
		CreateTS:   now,
		ModifiedTS: now,
		IsRoot:     true,
	}
	if err = m.putJSON(ctx, keyCollection(RootContainer, RootName), c); err != nil {
		return nil, err
	}
	if err = m.writeIDEntry(ctx, c.ID, classCollection, c.Container, c.Name); err != nil {
		logger.Warn("id index write failed for root collection %s: %v", c.ID, err)
		return c, &Error{Code: ErrIndexInconsistent, Message: "root created but id index write failed", Path: RootPath}
	}
	m.events.PublishDual(ctx, "create", "collection", c.Container, c.Name, nil, c.state())
	return c, nil
}

// CreateCollection creates a collection under an existing container.
//
// The existence checks and the insert are separate store operations; two
// concurrent creates of the same path can both pass the checks and the
// later write wins. See the package documentation.
func (m *Model) CreateCollection(ctx context.Context, container, name string, metadata map[string]string) (c *Collection, err error) {
	start := time.Now()
	defer func() { m.observe("create_collection", start, err) }()

	if name == "" || strings.Contains(name, "/") {
		return nil, &Error{Code: ErrInvalidArgument, Message: "invalid collection name", Path: name}
	}
	container = Normalize(container)

	parent, err := m.getCollectionByPath(ctx, container)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, errNoSuchCollection(container)
	}

	path := Merge(container, name)
	existing, err := m.getResource(ctx, container, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errResourceConflict(path)
	}
	sibling, err := m.getCollection(ctx, container, name)
	if err != nil {
		return nil, err
	}
	if sibling != nil {
		return nil, errCollectionConflict(path)
	}

	now := time.Now().UTC()
	c = &Collection{
		ID:         NewID(),
		Container:  container,
		Name:       name,
		Metadata:   encodeMetadata(metadata),
		CreateTS:   now,
		ModifiedTS: now,
	}
	if err = m.putJSON(ctx, keyCollection(container, name), c); err != nil {
		return nil, err
	}
	if err = m.writeIDEntry(ctx, c.ID, classCollection, c.Container, c.Name); err != nil {
		logger.Warn("id index write failed for collection %s (%s): %v", path, c.ID, err)
		return c, &Error{Code: ErrIndexInconsistent, Message: "collection created but id index write failed", Path: path}
	}
	m.events.PublishDual(ctx, "create", "collection", c.Container, c.Name, nil, c.state())
	return c, nil
}

// GetRootCollection returns the root collection.
func (m *Model) GetRootCollection(ctx context.Context) (*Collection, error) {
	return m.FindCollectionByPath(ctx, RootPath)
}

// FindCollectionByPath resolves a path to its collection.
func (m *Model) FindCollectionByPath(ctx context.Context, path string) (c *Collection, err error) {
	start := time.Now()
	defer func() { m.observe("find_collection_by_path", start, err) }()

	c, err = m.getCollectionByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errNotFound("collection", Normalize(path))
	}
	return c, nil
}

// FindCollectionByID resolves an opaque id to its collection through the id
// index. A stale index entry whose primary row is gone reports not-found,
// same as an unknown id.
func (m *Model) FindCollectionByID(ctx context.Context, id string) (c *Collection, err error) {
	start := time.Now()
	defer func() { m.observe("find_collection_by_id", start, err) }()

	entry, err := m.findIDEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil || entry.Classname != classCollection {
		return nil, errNotFound("collection", id)
	}
	c, err = m.getCollection(ctx, entry.Container, entry.Name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		logger.Warn("id index entry %s points at missing collection %s/%s", id, entry.Container, entry.Name)
		return nil, errNotFound("collection", id)
	}
	return c, nil
}

// FindCollectionByName returns the first collection with the given name,
// anywhere in the tree. This is a full family scan; it exists for
// administrative lookups, not for request paths.
func (m *Model) FindCollectionByName(ctx context.Context, name string) (c *Collection, err error) {
	start := time.Now()
	defer func() { m.observe("find_collection_by_name", start, err) }()

	err = m.store.Scan(ctx, []byte(prefixCollection), func(key, value []byte) error {
		if c != nil {
			return nil
		}
		var candidate Collection
		if jsonErr := json.Unmarshal(value, &candidate); jsonErr != nil {
			logger.Warn("skipping undecodable collection row %q: %v", key, jsonErr)
			return nil
		}
		if candidate.Name == name {
			c = &candidate
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errNotFound("collection", name)
	}
	return c, nil
}

// ChildCollections lists the direct child collections of a container path,
// sorted by key (and therefore by name).
func (m *Model) ChildCollections(ctx context.Context, path string) (children []*Collection, err error) {
	start := time.Now()
	defer func() { m.observe("child_collections", start, err) }()

	path = Normalize(path)
	err = m.store.Scan(ctx, keyCollectionChildren(path), func(key, value []byte) error {
		var c Collection
		if jsonErr := json.Unmarshal(value, &c); jsonErr != nil {
			logger.Warn("skipping undecodable collection row %q: %v", key, jsonErr)
			return nil
		}
		children = append(children, &c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return children, nil
}

// ChildCounts returns how many collections and resources a container path
// holds directly, without decoding the child rows.
func (m *Model) ChildCounts(ctx context.Context, path string) (collections, resources int, err error) {
	start := time.Now()
	defer func() { m.observe("child_counts", start, err) }()

	path = Normalize(path)
	count := func(prefix []byte, n *int) error {
		return m.store.Scan(ctx, prefix, func(_, _ []byte) error {
			*n++
			return nil
		})
	}
	if err = count(keyCollectionChildren(path), &collections); err != nil {
		return 0, 0, err
	}
	if err = count(keyResourceChildren(path), &resources); err != nil {
		return 0, 0, err
	}
	return collections, resources, nil
}

// UpdateCollection applies an update to the collection at path and refreshes
// its modification timestamp.
//
// The emitted event is update_metadata when the update changed the metadata
// and update_object otherwise; subscribers use the distinction to skip
// re-reads on pure touch updates.
func (m *Model) UpdateCollection(ctx context.Context, path string, update CollectionUpdate) (c *Collection, err error) {
	start := time.Now()
	defer func() { m.observe("update_collection", start, err) }()

	c, err = m.getCollectionByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errNotFound("collection", Normalize(path))
	}

	pre := c.state()
	preMetadata := c.Metadata

	if update.Metadata != nil {
		c.Metadata = encodeMetadata(update.Metadata)
	}
	if update.Access != nil {
		c.AccessLists = *update.Access
	}
	c.ModifiedTS = time.Now().UTC()

	if err = m.putJSON(ctx, keyCollection(c.Container, c.Name), c); err != nil {
		return nil, err
	}

	operation := "update_object"
	if !metadataEqual(preMetadata, c.Metadata) {
		operation = "update_metadata"
	}
	m.events.PublishDual(ctx, operation, "collection", c.Container, c.Name, pre, c.state())
	return c, nil
}

// DeleteCollection deletes a single collection row and its id-index entry.
// Children are not touched; use DeleteAll for recursive deletion.
func (m *Model) DeleteCollection(ctx context.Context, path string) (err error) {
	start := time.Now()
	defer func() { m.observe("delete_collection", start, err) }()

	c, err := m.getCollectionByPath(ctx, path)
	if err != nil {
		return err
	}
	if c == nil {
		return errNotFound("collection", Normalize(path))
	}
	return m.deleteCollectionRow(ctx, c)
}

// deleteCollectionRow announces the deletion, then removes the id-index
// entry and the row. The event goes out first: it carries the pre-state, and
// a publish failure is non-fatal either way.
func (m *Model) deleteCollectionRow(ctx context.Context, c *Collection) error {
	m.events.PublishDual(ctx, "delete", "collection", c.Container, c.Name, c.state(), nil)
	if err := m.deleteIDEntry(ctx, c.ID); err != nil {
		return err
	}
	return m.store.Delete(ctx, keyCollection(c.Container, c.Name))
}

// DeleteAll deletes the subtree rooted at path: children first (post-order),
// resources before the collection itself. A missing path is a no-op.
//
// A child row whose path equals its container's path would recurse forever;
// such a row is corrupt, so the cascade logs it and aborts.
func (m *Model) DeleteAll(ctx context.Context, path string) (err error) {
	start := time.Now()
	defer func() { m.observe("delete_all", start, err) }()
	return m.deleteAll(ctx, Normalize(path))
}

func (m *Model) deleteAll(ctx context.Context, path string) error {
	c, err := m.getCollectionByPath(ctx, path)
	if err != nil {
		return err
	}
	if c == nil {
		return nil
	}

	resources, err := m.ChildResources(ctx, c.Path())
	if err != nil {
		return err
	}
	for _, r := range resources {
		if err := m.deleteResourceRow(ctx, r); err != nil {
			return err
		}
	}

	children, err := m.ChildCollections(ctx, c.Path())
	if err != nil {
		return err
	}
	for _, child := range children {
		if child.Path() == c.Path() {
			logger.Error("self-referential collection row at %s, aborting cascade", child.Path())
			return &Error{Code: ErrInvalidArgument, Message: "self-referential collection row", Path: child.Path()}
		}
		if err := m.deleteAll(ctx, child.Path()); err != nil {
			return err
		}
	}

	return m.deleteCollectionRow(ctx, c)
}
