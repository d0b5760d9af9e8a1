package model

import (
	"context"
	"encoding/json"
	"time"

	"github.com/archivelab/coral/internal/logger"
)

// Group is a named principal group. ACL grants reference groups by id; the
// stored ACE carries the resolved name.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateGroup registers a new group. Names are unique; a duplicate name is
// an ErrUniqueViolation.
func (m *Model) CreateGroup(ctx context.Context, name string) (g *Group, err error) {
	start := time.Now()
	defer func() { m.observe("create_group", start, err) }()

	if name == "" {
		return nil, &Error{Code: ErrInvalidArgument, Message: "empty group name"}
	}
	existing, err := m.findGroupByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &Error{Code: ErrUniqueViolation, Message: "group name already taken", Path: name}
	}

	g = &Group{ID: NewID(), Name: name}
	if err = m.putJSON(ctx, keyGroup(g.ID), g); err != nil {
		return nil, err
	}
	return g, nil
}

// FindGroupByID resolves a group id.
func (m *Model) FindGroupByID(ctx context.Context, id string) (g *Group, err error) {
	start := time.Now()
	defer func() { m.observe("find_group_by_id", start, err) }()

	var group Group
	found, err := m.getJSON(ctx, keyGroup(id), &group)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errNotFound("group", id)
	}
	return &group, nil
}

// FindGroupByName resolves a group name. Group rows are keyed by id, so
// this is a family scan.
func (m *Model) FindGroupByName(ctx context.Context, name string) (g *Group, err error) {
	start := time.Now()
	defer func() { m.observe("find_group_by_name", start, err) }()

	g, err = m.findGroupByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, errNotFound("group", name)
	}
	return g, nil
}

func (m *Model) findGroupByName(ctx context.Context, name string) (*Group, error) {
	var match *Group
	err := m.store.Scan(ctx, []byte(prefixGroup), func(key, value []byte) error {
		if match != nil {
			return nil
		}
		var g Group
		if jsonErr := json.Unmarshal(value, &g); jsonErr != nil {
			logger.Warn("skipping undecodable group row %q: %v", key, jsonErr)
			return nil
		}
		if g.Name == name {
			match = &g
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}

// DeleteGroup removes a group. ACEs already written with the group's name
// are left in place.
func (m *Model) DeleteGroup(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { m.observe("delete_group", start, err) }()

	if _, err = m.FindGroupByID(ctx, id); err != nil {
		return err
	}
	return m.store.Delete(ctx, keyGroup(id))
}
