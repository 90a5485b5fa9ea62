package guides

import (
	"errors"

	"github.com/Morgan5/digital-planner/internal/contracts"
)

var ErrNotFound = errors.New("guide not found")

// Catalog is the fixed, read-only set of guides shared by every session.
type Catalog struct {
	guides []contracts.Guide
}

var defaultCatalog = &Catalog{guides: []contracts.Guide{
	{
		ID:       "1",
		Title:    "Bien organiser son planning",
		Category: "Organisation",
		Content: "Commencez chaque semaine par une revue de l'agenda. " +
			"Bloquez d'abord les rendez-vous fixes, puis réservez des créneaux pour le travail de fond. " +
			"Gardez une marge entre deux événements pour absorber les imprévus.",
	},
	{
		ID:       "2",
		Title:    "Astuces pour rester productif",
		Category: "Productivité",
		Content: "Travaillez par blocs courts et concentrés, suivis d'une pause. " +
			"Regroupez les petites tâches similaires et traitez-les ensemble. " +
			"Notez vos idées dans les notes pour libérer votre esprit.",
	},
	{
		ID:       "3",
		Title:    "Utiliser efficacement les to-do lists",
		Category: "Organisation",
		Content: "Formulez chaque tâche comme une action concrète. " +
			"Découpez les tâches longues en étapes plus petites. " +
			"Cochez les tâches terminées pour suivre votre progression.",
	},
}}

func Default() *Catalog {
	return defaultCatalog
}

func (c *Catalog) List() []contracts.Guide {
	out := make([]contracts.Guide, len(c.guides))
	copy(out, c.guides)
	return out
}

func (c *Catalog) Get(id string) (contracts.Guide, error) {
	for _, g := range c.guides {
		if g.ID == id {
			return g, nil
		}
	}
	return contracts.Guide{}, ErrNotFound
}
