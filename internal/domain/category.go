package domain

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// DefaultCategories is the fixed category list items are filed under.
var DefaultCategories = []Category{
	{ID: "lighting", Name: "Iluminación", Icon: "lamp-desk"},
	{ID: "walls", Name: "Paredes", Icon: "wall"},
	{ID: "climate", Name: "Control de Clima", Icon: "fan"},
	{ID: "windows", Name: "Ventanas", Icon: "window"},
	{ID: "blinds", Name: "Persianas", Icon: "venetian-blinds"},
	{ID: "furniture", Name: "Mobiliario", Icon: "armchair"},
	{ID: "electrical", Name: "Eléctrico", Icon: "power-socket"},
	{ID: "plumbing", Name: "Plomería", Icon: "pipe"},
	{ID: "safety", Name: "Equipo de Seguridad", Icon: "shield-alert"},
}

func CategoryByID(id string) (Category, bool) {
	for _, c := range DefaultCategories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}
