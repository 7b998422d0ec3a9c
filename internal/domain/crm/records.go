package crm

import "fmt"

// Task is a tasks-module task as needed for chat replies.
type Task struct {
	ID            string
	Title         string
	Status        string
	Deadline      string
	ResponsibleID string
}

// Label renders the one-line chat form of the task.
func (t Task) Label() string {
	title := t.Title
	if title == "" {
		title = "Sin título"
	}
	label := fmt.Sprintf("📋 Tarea #%s: %s", t.ID, title)
	if t.Deadline != "" {
		label += " · Vence: " + t.Deadline
	}
	return label
}

// Lead is a CRM lead.
type Lead struct {
	ID           string
	Title        string
	StatusID     string
	AssignedByID string
	DateCreate   string
}

// Label renders the one-line chat form of the lead.
func (l Lead) Label() string {
	title := l.Title
	if title == "" {
		title = "Lead #" + l.ID
	}
	return fmt.Sprintf("📋 Lead #%s - %s · Estado: %s (Asignado a: %s)", l.ID, title, l.StatusID, l.AssignedByID)
}

// Deal is a CRM deal. Deals are shown to users as "notificaciones".
type Deal struct {
	ID           string
	Title        string
	StatusID     string
	AssignedByID string
}

// Label renders the one-line chat form of the deal.
func (d Deal) Label() string {
	title := d.Title
	if title == "" {
		title = "Sin título"
	}
	status := d.StatusID
	if status == "" {
		status = "Sin estado"
	}
	return fmt.Sprintf("💼 Deal #%s: %s · Estado: %s", d.ID, title, status)
}

// User is a portal user.
type User struct {
	ID       string
	Name     string
	LastName string
}

// FullName joins first and last name, trimming whichever is missing.
func (u User) FullName() string {
	switch {
	case u.Name == "":
		return u.LastName
	case u.LastName == "":
		return u.Name
	default:
		return u.Name + " " + u.LastName
	}
}
