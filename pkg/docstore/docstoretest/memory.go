// Package docstoretest provides an in-memory docstore.Store for tests.
// Documents round-trip through bson exactly as they would through MongoDB.
package docstoretest

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/crowdfork/crowdfork/pkg/docstore"
)

type record struct {
	seq int
	doc bson.M
}

type Memory struct {
	mu      sync.Mutex
	seq     int
	colls   map[string]map[string]*record
	unique  map[string][]string
	failing map[string]error
}

var _ docstore.Store = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		colls:   make(map[string]map[string]*record),
		unique:  make(map[string][]string),
		failing: make(map[string]error),
	}
}

// Fail makes every later call of op ("create", "get", "list", ...) return err.
// Pass a nil err to clear it.
func (m *Memory) Fail(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failing, op)
		return
	}
	m.failing[op] = err
}

// Count returns the number of documents in coll.
func (m *Memory) Count(coll string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.colls[coll])
}

func (m *Memory) fault(op string) error {
	if err, ok := m.failing[op]; ok {
		return err
	}
	return nil
}

func (m *Memory) coll(name string) map[string]*record {
	c, ok := m.colls[name]
	if !ok {
		c = make(map[string]*record)
		m.colls[name] = c
	}
	return c
}

func (m *Memory) Create(_ context.Context, coll string, doc interface{}) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("create"); err != nil {
		return "", err
	}

	d, id, err := docstore.ToDocument(doc)
	if err != nil {
		return "", err
	}

	c := m.coll(coll)
	if _, exists := c[id]; exists {
		return "", fmt.Errorf("%w: %s", docstore.ErrDuplicate, coll)
	}
	if err := m.checkUnique(coll, id, d); err != nil {
		return "", err
	}

	m.seq++
	c[id] = &record{seq: m.seq, doc: d}
	return id, nil
}

func (m *Memory) Get(_ context.Context, coll, id string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("get"); err != nil {
		return err
	}

	r, ok := m.coll(coll)[id]
	if !ok {
		return docstore.ErrNotFound
	}
	return docstore.Decode(r.doc, dest)
}

func (m *Memory) List(_ context.Context, coll string, q docstore.Query, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("list"); err != nil {
		return err
	}

	var want interface{}
	if q.Field != "" {
		norm, err := docstore.Normalize(map[string]interface{}{"v": q.Value})
		if err != nil {
			return err
		}
		want = norm["v"]
	}

	var matched []*record
	for _, r := range m.coll(coll) {
		if q.Field != "" && !reflect.DeepEqual(r.doc[q.Field], want) {
			continue
		}
		matched = append(matched, r)
	}

	sort.Slice(matched, func(i, j int) bool {
		ti, tj := createdAt(matched[i].doc), createdAt(matched[j].doc)
		if ti != tj {
			return ti > tj
		}
		return matched[i].seq > matched[j].seq
	})
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return decodeAll(matched, dest)
}

func (m *Memory) GetMany(_ context.Context, coll string, ids []string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("get_many"); err != nil {
		return err
	}

	c := m.coll(coll)
	var found []*record
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if r, ok := c[id]; ok && !seen[id] {
			seen[id] = true
			found = append(found, r)
		}
	}
	return decodeAll(found, dest)
}

func (m *Memory) Update(_ context.Context, coll, id string, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("update"); err != nil {
		return err
	}

	r, ok := m.coll(coll)[id]
	if !ok {
		return docstore.ErrNotFound
	}
	norm, err := docstore.Normalize(fields)
	if err != nil {
		return err
	}
	if err := m.checkUnique(coll, id, norm); err != nil {
		return err
	}
	for k, v := range norm {
		r.doc[k] = v
	}
	return nil
}

// checkUnique rejects fields that collide with another document on a unique
// index. Callers hold m.mu.
func (m *Memory) checkUnique(coll, id string, fields bson.M) error {
	for _, field := range m.unique[coll] {
		v, ok := fields[field]
		if !ok || v == nil {
			continue
		}
		for otherID, r := range m.coll(coll) {
			if otherID != id && r.doc[field] == v {
				return fmt.Errorf("%w: %s.%s", docstore.ErrDuplicate, coll, field)
			}
		}
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, coll, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("delete"); err != nil {
		return err
	}
	delete(m.coll(coll), id)
	return nil
}

func (m *Memory) DeleteWhere(_ context.Context, coll, field string, value interface{}) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("delete_where"); err != nil {
		return 0, err
	}

	var n int64
	c := m.coll(coll)
	for id, r := range c {
		if r.doc[field] == value {
			delete(c, id)
			n++
		}
	}
	return n, nil
}

func (m *Memory) AddToSet(_ context.Context, coll, id, field string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("add_to_set"); err != nil {
		return err
	}

	r, ok := m.coll(coll)[id]
	if !ok {
		return docstore.ErrNotFound
	}
	arr := asArray(r.doc[field])
	for _, v := range arr {
		if v == value {
			return nil
		}
	}
	r.doc[field] = append(arr, value)
	return nil
}

func (m *Memory) RemoveFromSet(_ context.Context, coll, id, field string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("remove_from_set"); err != nil {
		return err
	}

	r, ok := m.coll(coll)[id]
	if !ok {
		return docstore.ErrNotFound
	}
	kept := primitive.A{}
	for _, v := range asArray(r.doc[field]) {
		if v != value {
			kept = append(kept, v)
		}
	}
	r.doc[field] = kept
	return nil
}

// RunInTransaction has no isolation; fn simply runs.
func (m *Memory) RunInTransaction(ctx context.Context, fn docstore.TxFunc) error {
	return fn(ctx)
}

// EnsureIndex only records unique single-field indexes, which Create and
// Update then enforce.
func (m *Memory) EnsureIndex(_ context.Context, coll string, idx docstore.IndexSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("ensure_index"); err != nil {
		return err
	}
	if !idx.Unique || len(idx.Keys) != 1 {
		return nil
	}
	field := idx.Keys[0].Field
	for _, f := range m.unique[coll] {
		if f == field {
			return nil
		}
	}
	m.unique[coll] = append(m.unique[coll], field)
	return nil
}

// HasUniqueIndex reports whether EnsureIndex recorded a unique index on
// coll.field.
func (m *Memory) HasUniqueIndex(coll, field string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.unique[coll] {
		if f == field {
			return true
		}
	}
	return false
}

func (m *Memory) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fault("ping")
}

func (m *Memory) Close(context.Context) error { return nil }

func createdAt(doc bson.M) int64 {
	if t, ok := doc["created_at"].(primitive.DateTime); ok {
		return int64(t)
	}
	return 0
}

func asArray(v interface{}) primitive.A {
	if a, ok := v.(primitive.A); ok {
		return a
	}
	return primitive.A{}
}

// decodeAll appends each record to the slice dest points at.
func decodeAll(records []*record, dest interface{}) error {
	sv := reflect.ValueOf(dest)
	if sv.Kind() != reflect.Ptr || sv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("docstoretest: dest must be a pointer to a slice, got %T", dest)
	}
	slice := sv.Elem()
	slice.Set(reflect.MakeSlice(slice.Type(), 0, len(records)))

	elemType := slice.Type().Elem()
	for _, r := range records {
		elem := reflect.New(elemType)
		if err := docstore.Decode(r.doc, elem.Interface()); err != nil {
			return err
		}
		slice.Set(reflect.Append(slice, elem.Elem()))
	}
	return nil
}
