package navigation

import (
	"strings"
	"sync"
)

type Section string

const (
	Dashboard Section = "dashboard"
	Agenda    Section = "agenda"
	Todo      Section = "todo"
	Notes     Section = "notes"
	Guides    Section = "guides"
)

// Entry describes a section in the menu and on the dashboard.
type Entry struct {
	Section     Section `json:"section"`
	Label       string  `json:"label"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
}

var menu = []Entry{
	{Section: Dashboard, Label: "Accueil", Title: "Accueil", Description: "Vue d'ensemble de votre planner"},
	{Section: Agenda, Label: "Agenda", Title: "Agenda / Planning", Description: "Planifiez vos événements et rendez-vous"},
	{Section: Todo, Label: "To-Do List", Title: "To-Do List", Description: "Gérez vos tâches quotidiennes"},
	{Section: Notes, Label: "Notes", Title: "Notes", Description: "Notez vos idées et réflexions"},
	{Section: Guides, Label: "Guides", Title: "Guides", Description: "Consultez les guides d'utilisation"},
}

var tips = map[Section][]string{
	Agenda: {
		"Ajoutez vos rendez-vous dès que vous les connaissez.",
		"Indiquez une description pour retrouver le contexte d'un événement.",
		"Vérifiez votre agenda chaque matin.",
	},
	Todo: {
		"Note ici toutes tes tâches à accomplir.",
		"Coche-les une fois terminées pour visualiser tes progrès.",
		"Divise les grandes tâches en plus petites pour plus d'efficacité.",
	},
	Notes: {
		"Les notes sont parfaites pour écrire des idées, réflexions ou détails rapides.",
		"Utilise-les comme un carnet digital accessible partout.",
		"Donne des titres clairs à tes notes pour les retrouver facilement.",
	},
}

// Resolve maps a section name to a known section. Unknown names fall back to
// the dashboard.
func Resolve(name string) Section {
	switch s := Section(strings.ToLower(strings.TrimSpace(name))); s {
	case Dashboard, Agenda, Todo, Notes, Guides:
		return s
	default:
		return Dashboard
	}
}

func Menu() []Entry {
	out := make([]Entry, len(menu))
	copy(out, menu)
	return out
}

// Cards lists the dashboard shortcuts, i.e. every section but the dashboard.
func Cards() []Entry {
	return Menu()[1:]
}

func Lookup(s Section) Entry {
	for _, e := range menu {
		if e.Section == s {
			return e
		}
	}
	return menu[0]
}

func Tips(s Section) []string {
	return append([]string(nil), tips[s]...)
}

// Navigator holds the active section of one workspace.
type Navigator struct {
	mu     sync.RWMutex
	active Section
}

func NewNavigator() *Navigator {
	return &Navigator{active: Dashboard}
}

func (n *Navigator) SetActive(name string) Section {
	s := Resolve(name)
	n.mu.Lock()
	n.active = s
	n.mu.Unlock()
	return s
}

func (n *Navigator) Active() Section {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.active
}
