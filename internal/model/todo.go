package model

// Todo is a myToDo task.
type Todo struct {
	ID          ID     `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

func (t Todo) ItemID() ID    { return t.ID }
func (t Todo) Flagged() bool { return t.Completed }

func (t Todo) WithFlag(v bool) Todo {
	t.Completed = v
	return t
}

// Fields returns the editable fields keyed by form field name.
func (t Todo) Fields() map[string]string {
	return map[string]string{
		"title":       t.Title,
		"description": t.Description,
	}
}

// Status is the human label used by the detail view.
func (t Todo) Status() string {
	if t.Completed {
		return "Completed"
	}
	return "Pending"
}
