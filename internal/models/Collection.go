package models

import "sort"

// Collection is a user's record collection, kept newest first.
type Collection []*Record

// SortNewestFirst orders the collection by descending timestamp. Records
// with equal timestamps keep their relative order.
func (c Collection) SortNewestFirst() {
	sort.SliceStable(c, func(i, j int) bool {
		return c[i].Timestamp.After(c[j].Timestamp.Time)
	})
}

func (c Collection) IndexOf(id string) int {
	for i, r := range c {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Trim keeps the max most recent records and returns the rest as evicted.
// The collection must already be sorted newest first.
func (c Collection) Trim(max int) (kept, evicted Collection) {
	if max < 0 || len(c) <= max {
		return c, nil
	}
	return c[:max], c[max:]
}

// Without returns a new collection without the records whose ids are in drop.
func (c Collection) Without(drop map[string]struct{}) Collection {
	out := make(Collection, 0, len(c))
	for _, r := range c {
		if _, ok := drop[r.ID]; ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ReferencedFiles counts records per referenced image file name.
func (c Collection) ReferencedFiles() map[string]int {
	refs := make(map[string]int)
	for _, r := range c {
		if r.IsImageBacked() {
			refs[r.ImageFilename]++
		}
	}
	return refs
}
