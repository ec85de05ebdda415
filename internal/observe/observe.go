// Package observe is a small publish/subscribe list.
package observe

// List holds subscribers for values of type T. It is not safe for
// concurrent use; the drawing core handles one event at a time.
type List[T any] struct {
	next int
	subs []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it again.
func (l *List[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	l.next++
	id := l.next
	l.subs = append(l.subs, subscriber[T]{id: id, fn: fn})
	return func() {
		for i, s := range l.subs {
			if s.id == id {
				l.subs = append(l.subs[:i:i], l.subs[i+1:]...)
				return
			}
		}
	}
}

// Notify calls every subscriber in registration order.
func (l *List[T]) Notify(v T) {
	for _, s := range l.subs {
		s.fn(v)
	}
}

// Len returns the number of subscribers.
func (l *List[T]) Len() int {
	return len(l.subs)
}
