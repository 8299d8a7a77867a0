package lru

import (
	"github.com/trussle/collector/pkg/models"
	"github.com/trussle/collector/pkg/uuid"
)

type element struct {
	key        uuid.UUID
	value      models.Message
	prev, next *element
}

// list is a doubly linked list ordered from the most recently used
// element at the front to the least recently used at the back.
type list struct {
	front, back *element
	len         int
}

// Unshift places the element at the front of the list.
func (l *list) Unshift(e *element) {
	e.prev = nil
	e.next = l.front
	if l.front != nil {
		l.front.prev = e
	}
	l.front = e
	if l.back == nil {
		l.back = e
	}
	l.len++
}

// Mark moves an existing element to the front of the list.
func (l *list) Mark(e *element) {
	if l.front == e {
		return
	}
	l.unlink(e)
	l.len--
	l.Unshift(e)
}

// Back returns the least recently used element, nil when empty.
func (l *list) Back() *element {
	return l.back
}

// Remove unlinks the element.
// Returns true if the element was part of the list.
func (l *list) Remove(e *element) bool {
	if l.front != e && e.prev == nil && e.next == nil {
		return false
	}
	l.unlink(e)
	l.len--
	return true
}

// Walk visits every element, least recently used first.
func (l *list) Walk(fn func(uuid.UUID, models.Message)) {
	for e := l.back; e != nil; e = e.prev {
		fn(e.key, e.value)
	}
}

// Dequeue visits every element, least recently used first, stopping at
// the first error.
func (l *list) Dequeue(fn func(*element) error) error {
	for e := l.back; e != nil; e = e.prev {
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// Reset empties the list.
func (l *list) Reset() {
	l.front, l.back, l.len = nil, nil, 0
}

// Len returns the number of elements.
func (l *list) Len() int {
	return l.len
}

func (l *list) unlink(e *element) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		l.front = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		l.back = e.prev
	}
	e.prev, e.next = nil, nil
}
