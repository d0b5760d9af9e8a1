package model

import "context"

// Classnames recorded in ID index entries. FindByID lookups check the
// classname before decoding the target row, so a stale or cross-type entry
// resolves to "not found" rather than a decode error.
const (
	classCollection = "Collection"
	classResource   = "Resource"
)

// idEntry maps an opaque object ID back to the primary row it belongs to.
type idEntry struct {
	ID        string `json:"id"`
	Classname string `json:"classname"`
	Container string `json:"container"`
	Name      string `json:"name"`
}

func (m *Model) findIDEntry(ctx context.Context, id string) (*idEntry, error) {
	var entry idEntry
	found, err := m.getJSON(ctx, keyIDIndex(id), &entry)
	if err != nil || !found {
		return nil, err
	}
	return &entry, nil
}

func (m *Model) writeIDEntry(ctx context.Context, id, classname, container, name string) error {
	return m.putJSON(ctx, keyIDIndex(id), idEntry{
		ID:        id,
		Classname: classname,
		Container: container,
		Name:      name,
	})
}

func (m *Model) deleteIDEntry(ctx context.Context, id string) error {
	return m.store.Delete(ctx, keyIDIndex(id))
}
