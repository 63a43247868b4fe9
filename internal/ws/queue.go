package ws

import "slices"

// Queue is the insertion-ordered set of identifiers waiting for an opponent.
// Not safe for concurrent use.
type Queue struct {
	ids []string
}

func (q *Queue) Contains(id string) bool {
	return slices.Contains(q.ids, id)
}

// Push appends id unless it is already queued.
func (q *Queue) Push(id string) bool {
	if q.Contains(id) {
		return false
	}
	q.ids = append(q.ids, id)
	return true
}

func (q *Queue) Remove(id string) bool {
	i := slices.Index(q.ids, id)
	if i < 0 {
		return false
	}
	q.ids = slices.Delete(q.ids, i, i+1)
	return true
}

// PopFirstExcept removes and returns the longest-waiting identifier that is
// not id.
func (q *Queue) PopFirstExcept(id string) (string, bool) {
	for i, other := range q.ids {
		if other == id {
			continue
		}
		q.ids = slices.Delete(q.ids, i, i+1)
		return other, true
	}
	return "", false
}

func (q *Queue) Len() int {
	return len(q.ids)
}

func (q *Queue) Snapshot() []string {
	return slices.Clone(q.ids)
}
