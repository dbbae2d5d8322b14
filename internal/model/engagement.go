package model

import "sort"

// UserSet is a set of user ids.
type UserSet map[int64]struct{}

func NewUserSet(ids ...int64) UserSet {
	s := make(UserSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}

	return s
}

func (s UserSet) Has(id int64) bool {
	_, ok := s[id]

	return ok
}

// Add inserts id. s must be non-nil.
func (s UserSet) Add(id int64) {
	s[id] = struct{}{}
}

func (s UserSet) Remove(id int64) {
	delete(s, id)
}

func (s UserSet) Len() int {
	return len(s)
}

// Slice returns the ids in ascending order.
func (s UserSet) Slice() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

func (s UserSet) Clone() UserSet {
	c := make(UserSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}

	return c
}
