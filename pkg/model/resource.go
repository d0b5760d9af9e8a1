package model

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/archivelab/coral/internal/logger"
	"github.com/archivelab/coral/pkg/notify"
)

// Resource is a namespace leaf entry: a named reference to stored content.
// The content itself lives behind the URL (data object ids use the
// "coral://" scheme); the resource row carries the describing metadata.
type Resource struct {
	ID         string            `json:"id"`
	Container  string            `json:"container"`
	Name       string            `json:"name"`
	Checksum   string            `json:"checksum"`
	Size       int64             `json:"size"`
	Metadata   map[string]string `json:"metadata"`
	Mimetype   string            `json:"mimetype"`
	URL        string            `json:"url"`
	CreateTS   time.Time         `json:"create_ts"`
	ModifiedTS time.Time         `json:"modified_ts"`
	FileName   string            `json:"file_name"`
	Type       string            `json:"type"`

	AccessLists
}

// Path returns the canonical full path of the resource.
func (r *Resource) Path() string {
	return Merge(r.Container, r.Name)
}

// GetMetadata returns the resource's metadata in its public decoded form.
func (r *Resource) GetMetadata() map[string]string {
	return decodeMetadata(r.Metadata)
}

// MetadataList returns the metadata as a key-sorted list of decoded entries.
func (r *Resource) MetadataList() []MetadataEntry {
	return metadataToList(r.Metadata)
}

// UserCan reports whether the principal may perform the action on this
// resource.
func (r *Resource) UserCan(p Principal, action Action) bool {
	return UserCan(p, r.AccessLists, action)
}

// ToDict projects the resource onto the generic map shape used by API
// payloads.
func (r *Resource) ToDict(p *Principal) map[string]any {
	d := map[string]any{
		"id":        r.ID,
		"name":      r.Name,
		"container": r.Container,
		"path":      r.Path(),
		"checksum":  r.Checksum,
		"size":      r.Size,
		"mimetype":  r.Mimetype,
		"url":       r.URL,
		"created":   r.CreateTS.UTC().Format(TimeLayout),
		"modified":  r.ModifiedTS.UTC().Format(TimeLayout),
		"metadata":  r.MetadataList(),
		"filename":  r.FileName,
		"type":      r.Type,
	}
	if p != nil {
		d["can_read"] = r.UserCan(*p, ActionRead)
		d["can_write"] = r.UserCan(*p, ActionWrite)
		d["can_edit"] = r.UserCan(*p, ActionEdit)
		d["can_delete"] = r.UserCan(*p, ActionDelete)
	}
	return d
}

// SearchID implements search.Document.
func (r *Resource) SearchID() string { return r.ID }

// SearchType implements search.Document.
func (r *Resource) SearchType() string { return classResource }

// SearchField returns the named indexable field, falling back to the decoded
// metadata value of the same key.
func (r *Resource) SearchField(field string) string {
	switch field {
	case "id":
		return r.ID
	case "name":
		return r.Name
	case "container":
		return r.Container
	case "path":
		return r.Path()
	case "mimetype":
		return r.Mimetype
	default:
		return decodeMetaValue(r.Metadata[field])
	}
}

// state builds the notification snapshot of the resource. Resource events
// are flat single-state payloads, unlike the pre/post pairs of collections.
func (r *Resource) state() notify.State {
	return notify.State{
		"id":          r.ID,
		"url":         r.URL,
		"container":   r.Container,
		"name":        r.Name,
		"create_ts":   r.CreateTS.UTC().Format(TimeLayout),
		"modified_ts": r.ModifiedTS.UTC().Format(TimeLayout),
		"metadata":    r.GetMetadata(),
	}
}

// ResourceCreate carries the fields of a new resource. Container and Name
// are mandatory; Type defaults to "UNKNOWN" and FileName to Name.
type ResourceCreate struct {
	Container string
	Name      string
	URL       string
	Mimetype  string
	Size      int64
	Checksum  string
	Metadata  map[string]string
	FileName  string
	Type      string
}

// ResourceUpdate carries the mutable parts of a resource. Nil fields are
// left unchanged.
type ResourceUpdate struct {
	Metadata map[string]string
	Checksum *string
	Size     *int64
	Mimetype *string
	URL      *string
	FileName *string
	Type     *string
	Access   *AccessLists
}

// getResource loads a resource row; (nil, nil) when the row is absent.
func (m *Model) getResource(ctx context.Context, container, name string) (*Resource, error) {
	var r Resource
	found, err := m.getJSON(ctx, keyResource(container, name), &r)
	if err != nil || !found {
		return nil, err
	}
	return &r, nil
}

// CreateResource creates a resource under an existing container.
//
// Same non-transactional caveat as CreateCollection: the conflict checks and
// the insert can interleave with a concurrent create of the same path.
func (m *Model) CreateResource(ctx context.Context, req ResourceCreate) (r *Resource, err error) {
	start := time.Now()
	defer func() { m.observe("create_resource", start, err) }()

	if req.Name == "" || strings.Contains(req.Name, "/") {
		return nil, &Error{Code: ErrInvalidArgument, Message: "invalid resource name", Path: req.Name}
	}
	container := Normalize(req.Container)

	parent, err := m.getCollectionByPath(ctx, container)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, errNoSuchCollection(container)
	}

	path := Merge(container, req.Name)
	sibling, err := m.getCollection(ctx, container, req.Name)
	if err != nil {
		return nil, err
	}
	if sibling != nil {
		return nil, errCollectionConflict(path)
	}
	existing, err := m.getResource(ctx, container, req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errResourceConflict(path)
	}

	now := time.Now().UTC()
	r = &Resource{
		ID:         NewID(),
		Container:  container,
		Name:       req.Name,
		Checksum:   req.Checksum,
		Size:       req.Size,
		Metadata:   encodeMetadata(req.Metadata),
		Mimetype:   req.Mimetype,
		URL:        req.URL,
		CreateTS:   now,
		ModifiedTS: now,
		FileName:   req.FileName,
		Type:       req.Type,
	}
	if r.FileName == "" {
		r.FileName = r.Name
	}
	if r.Type == "" {
		r.Type = "UNKNOWN"
	}

	if err = m.putJSON(ctx, keyResource(container, req.Name), r); err != nil {
		return nil, err
	}
	if err = m.writeIDEntry(ctx, r.ID, classResource, r.Container, r.Name); err != nil {
		logger.Warn("id index write failed for resource %s (%s): %v", path, r.ID, err)
		return r, &Error{Code: ErrIndexInconsistent, Message: "resource created but id index write failed", Path: path}
	}
	m.events.PublishSingle(ctx, "create", "resource", r.Container, r.Name, r.state())
	return r, nil
}

// FindResourceByPath resolves a path to its resource.
func (m *Model) FindResourceByPath(ctx context.Context, path string) (r *Resource, err error) {
	start := time.Now()
	defer func() { m.observe("find_resource_by_path", start, err) }()

	path = Normalize(path)
	if path == RootPath {
		return nil, errNotFound("resource", path)
	}
	container, name := Split(path)
	r, err = m.getResource(ctx, container, name)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errNotFound("resource", path)
	}
	return r, nil
}

// FindResourceByID resolves an opaque id to its resource through the id
// index.
func (m *Model) FindResourceByID(ctx context.Context, id string) (r *Resource, err error) {
	start := time.Now()
	defer func() { m.observe("find_resource_by_id", start, err) }()

	entry, err := m.findIDEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil || entry.Classname != classResource {
		return nil, errNotFound("resource", id)
	}
	r, err = m.getResource(ctx, entry.Container, entry.Name)
	if err != nil {
		return nil, err
	}
	if r == nil {
		logger.Warn("id index entry %s points at missing resource %s/%s", id, entry.Container, entry.Name)
		return nil, errNotFound("resource", id)
	}
	return r, nil
}

// ChildResources lists the direct child resources of a container path,
// sorted by key (and therefore by name).
func (m *Model) ChildResources(ctx context.Context, path string) (children []*Resource, err error) {
	start := time.Now()
	defer func() { m.observe("child_resources", start, err) }()

	path = Normalize(path)
	err = m.store.Scan(ctx, keyResourceChildren(path), func(key, value []byte) error {
		var r Resource
		if jsonErr := json.Unmarshal(value, &r); jsonErr != nil {
			logger.Warn("skipping undecodable resource row %q: %v", key, jsonErr)
			return nil
		}
		children = append(children, &r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return children, nil
}

// UpdateResource applies an update to the resource at path and refreshes its
// modification timestamp.
func (m *Model) UpdateResource(ctx context.Context, path string, update ResourceUpdate) (r *Resource, err error) {
	start := time.Now()
	defer func() { m.observe("update_resource", start, err) }()

	path = Normalize(path)
	container, name := Split(path)
	r, err = m.getResource(ctx, container, name)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errNotFound("resource", path)
	}

	if update.Metadata != nil {
		r.Metadata = encodeMetadata(update.Metadata)
	}
	if update.Checksum != nil {
		r.Checksum = *update.Checksum
	}
	if update.Size != nil {
		r.Size = *update.Size
	}
	if update.Mimetype != nil {
		r.Mimetype = *update.Mimetype
	}
	if update.URL != nil {
		r.URL = *update.URL
	}
	if update.FileName != nil {
		r.FileName = *update.FileName
	}
	if update.Type != nil {
		r.Type = *update.Type
	}
	if update.Access != nil {
		r.AccessLists = *update.Access
	}
	r.ModifiedTS = time.Now().UTC()

	if err = m.putJSON(ctx, keyResource(container, name), r); err != nil {
		return nil, err
	}
	m.events.PublishSingle(ctx, "update", "resource", r.Container, r.Name, r.state())
	return r, nil
}

// DeleteResource deletes the resource at path and its id-index entry.
func (m *Model) DeleteResource(ctx context.Context, path string) (err error) {
	start := time.Now()
	defer func() { m.observe("delete_resource", start, err) }()

	path = Normalize(path)
	container, name := Split(path)
	r, err := m.getResource(ctx, container, name)
	if err != nil {
		return err
	}
	if r == nil {
		return errNotFound("resource", path)
	}
	return m.deleteResourceRow(ctx, r)
}

// deleteResourceRow announces the deletion first, then removes the id-index
// entry and the row.
func (m *Model) deleteResourceRow(ctx context.Context, r *Resource) error {
	m.events.PublishSingle(ctx, "delete", "resource", r.Container, r.Name, r.state())
	if err := m.deleteIDEntry(ctx, r.ID); err != nil {
		return err
	}
	return m.store.Delete(ctx, keyResource(r.Container, r.Name))
}
