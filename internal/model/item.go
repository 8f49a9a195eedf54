package model

// Item is the constraint shared by every resource a list screen can hold.
// The flag is "completed" for todos and "favorite" for recipes.
type Item[T any] interface {
	ItemID() ID
	Flagged() bool
	WithFlag(bool) T
}

// Stats are the dashboard counters. Completed counts flagged items.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// Count derives Stats from a full collection.
func Count[T Item[T]](items []T) Stats {
	s := Stats{Total: len(items)}
	for _, it := range items {
		if it.Flagged() {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}

// Add patches s as if it were inserted.
func (s Stats) Add(flagged bool) Stats {
	s.Total++
	if flagged {
		s.Completed++
	} else {
		s.Pending++
	}
	return s
}

// Remove patches s as if an item with the given flag was dropped.
func (s Stats) Remove(flagged bool) Stats {
	s.Total--
	if flagged {
		s.Completed--
	} else {
		s.Pending--
	}
	return s
}

// Flip patches s for an item whose flag went from one value to another.
func (s Stats) Flip(from, to bool) Stats {
	if from == to {
		return s
	}
	return s.Remove(from).Add(to)
}
