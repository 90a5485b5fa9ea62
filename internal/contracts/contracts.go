package contracts

// User is the identity bound to a planner session.
type User struct {
	Username        string `json:"username"`
	IsAuthenticated bool   `json:"is_authenticated"`
}

// Event is an agenda entry. Dates are YYYY-MM-DD and times HH:MM, as submitted.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Description string `json:"description"`
}

func (e Event) EntityID() string { return e.ID }

// SingleDay reports whether the event starts and ends on the same date.
func (e Event) SingleDay() bool { return e.StartDate == e.EndDate }

// Task is a to-do list item.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

func (t Task) EntityID() string { return t.ID }

// Note is a free-form note. CreatedAt is already formatted for display.
type Note struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func (n Note) EntityID() string { return n.ID }

// Guide is a read-only help article.
type Guide struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Content  string `json:"content"`
}
