package web

import (
	"net/http"
	"strconv"

	"github.com/vbonduro/infratrack/internal/domain"
)

// pavilionView is one bucket narrowed to a floor and optionally a location.
type pavilionView struct {
	ID         domain.PavilionID      `json:"id"`
	Floors     []int                  `json:"floors"`
	Locations  []domain.Location      `json:"locations"`
	Items      []domain.Item          `json:"items"`
	Categories []domain.CategoryGroup `json:"categories"`
	BadCount   int                    `json:"badCount"`
}

func (s *Server) handleListPavilions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.State(), s.logger)
}

func (s *Server) handleGetPavilion(w http.ResponseWriter, r *http.Request) {
	id := domain.PavilionID(r.PathValue("id"))
	p, ok := s.service.State().Pavilions.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	floor := 0
	if v := r.URL.Query().Get("floor"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid floor", http.StatusBadRequest)
			return
		}
		floor = n
	}
	locationID := r.URL.Query().Get("location")

	locations := p.LocationsOnFloor(floor)
	var items []domain.Item
	if locationID != "" {
		items = p.ItemsAt(locationID)
	} else {
		onFloor := make(map[string]bool, len(locations))
		for _, loc := range locations {
			onFloor[loc.ID] = true
		}
		items = []domain.Item{}
		for _, item := range p.Items {
			if item.LocationID != nil && onFloor[*item.LocationID] {
				items = append(items, item)
			}
		}
	}

	writeJSON(w, http.StatusOK, pavilionView{
		ID:         p.ID,
		Floors:     p.Floors(),
		Locations:  locations,
		Items:      items,
		Categories: domain.GroupByCategory(items, domain.DefaultCategories),
		BadCount:   p.CountStatus(domain.StatusBad),
	}, s.logger)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.DefaultCategories, s.logger)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Refresh(r.Context()); err != nil {
		s.logger.Error("refresh failed", "error", err)
	}
	writeJSON(w, http.StatusOK, s.service.State(), s.logger)
}
