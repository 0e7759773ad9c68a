package domain

// TodoList is a named checklist shown alongside the dial grid.
type TodoList struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// TodoItem is a single entry in a todo list. Items carry no ordering
// key; they render in insertion order.
type TodoItem struct {
	ID     int64  `json:"id"`
	ListID int64  `json:"todoListId"`
	Title  string `json:"title"`
	Done   bool   `json:"done"`
}
