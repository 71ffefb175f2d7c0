package collections

import (
	"container/list"
)

type keyVal struct {
	key interface{}
	val interface{}
}

// OrderedMap tracks the insertion ordering of elements in a map.
// Used as a FIFO queue it doubles as a "scheduled" set: re-inserting a pending key is a no-op.
// It is not thread-safe.
type OrderedMap struct {
	items map[interface{}]*list.Element
	order *list.List
}

// NewOrderedMap allocates an ordered map with the given initial capacity.
// The capacity will grow as needed.
func NewOrderedMap(cap int) OrderedMap {
	return OrderedMap{
		items: make(map[interface{}]*list.Element, cap),
		order: list.New(),
	}
}

// Len returns the number of elements in the map
func (m OrderedMap) Len() int {
	return len(m.items)
}

// Get returns the value for a given key in the map and an existence flag.
func (m OrderedMap) Get(key interface{}) (interface{}, bool) {
	elem := m.items[key]
	if elem == nil {
		return nil, false
	}
	return elem.Value.(keyVal).val, true
}

// Set sets the value for a given key in the map and returns true iff the key did not already exist.
// If the key already exists its value is updated, but its position is not.
func (m OrderedMap) Set(key, val interface{}) bool {
	elem := m.items[key]
	if elem != nil {
		elem.Value = keyVal{key, val}
		return false
	}

	elem = m.order.PushFront(keyVal{key, val})
	m.items[key] = elem
	return true
}

// Delete deletes the given key from the map, returning the corresponding value and an existence flag.
func (m OrderedMap) Delete(key interface{}) (interface{}, bool) {
	elem := m.items[key]
	if elem == nil {
		return nil, false
	}
	delete(m.items, key)
	return m.order.Remove(elem).(keyVal).val, true
}

// Oldest returns the least recently inserted entry without removing it.
func (m OrderedMap) Oldest() (key, val interface{}, ok bool) {
	elem := m.order.Back()
	if elem == nil {
		return nil, nil, false
	}
	kv := elem.Value.(keyVal)
	return kv.key, kv.val, true
}

// PopOldest removes and returns the least recently inserted entry.
func (m OrderedMap) PopOldest() (key, val interface{}, ok bool) {
	key, val, ok = m.Oldest()
	if ok {
		m.Delete(key)
	}
	return
}

// Keys returns the keys from oldest to newest.
func (m OrderedMap) Keys() []interface{} {
	keys := make([]interface{}, 0, m.Len())
	m.RangeInc(func(k, _ interface{}) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// RangeInc iterates over the map from the oldest to the newest entry.
func (m OrderedMap) RangeInc(cb func(k, v interface{}) bool) {
	elem := m.order.Back()
	for elem != nil {
		kv := elem.Value.(keyVal)
		elem = elem.Prev() // advance before cb(...), since cb(...) might delete `elem`
		if !cb(kv.key, kv.val) {
			break
		}
	}
}

// RangeDec iterates over the map from the newest to the oldest entry.
func (m OrderedMap) RangeDec(cb func(k, v interface{}) bool) {
	elem := m.order.Front()
	for elem != nil {
		kv := elem.Value.(keyVal)
		elem = elem.Next()
		if !cb(kv.key, kv.val) {
			break
		}
	}
}
