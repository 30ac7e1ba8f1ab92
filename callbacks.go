package tether

type callbackEntry[T any] struct {
	id uint32
	fn func(T)
}

// callbackList is an ordered set of callbacks that can be removed through
// the CallbackHandle returned at registration.
type callbackList[T any] struct {
	entries []callbackEntry[T]
	nextID  uint32
}

// CallbackHandle allows removing a registered callback.
type CallbackHandle struct {
	remove func()
}

// Remove unregisters the callback so it no longer fires. Safe to call more
// than once.
func (h CallbackHandle) Remove() {
	if h.remove != nil {
		h.remove()
	}
}

func (l *callbackList[T]) add(fn func(T)) CallbackHandle {
	l.nextID++
	id := l.nextID
	l.entries = append(l.entries, callbackEntry[T]{id: id, fn: fn})
	return CallbackHandle{remove: func() { l.removeID(id) }}
}

// removeID drops the entry with the given id.
// Uses copy+zero to avoid retaining the closure in the backing array.
func (l *callbackList[T]) removeID(id uint32) {
	for i := range l.entries {
		if l.entries[i].id == id {
			copy(l.entries[i:], l.entries[i+1:])
			l.entries[len(l.entries)-1] = callbackEntry[T]{}
			l.entries = l.entries[:len(l.entries)-1]
			return
		}
	}
}

// emit calls every callback with v. Callbacks removed during emission still
// see this event.
func (l *callbackList[T]) emit(v T) {
	if len(l.entries) == 0 {
		return
	}
	snapshot := make([]callbackEntry[T], len(l.entries))
	copy(snapshot, l.entries)
	for _, e := range snapshot {
		e.fn(v)
	}
}

func (l *callbackList[T]) len() int {
	return len(l.entries)
}

func (l *callbackList[T]) clear() {
	clear(l.entries)
	l.entries = l.entries[:0]
}
