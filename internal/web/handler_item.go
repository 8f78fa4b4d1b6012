package web

import (
	"errors"
	"net/http"

	"github.com/vbonduro/infratrack/internal/domain"
	"github.com/vbonduro/infratrack/internal/store"
)

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var in domain.NewItem
	if err := decodeJSON(w, r, &in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := in.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validateImages(in.Images); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := s.service.AddItem(r.Context(), in)
	if err != nil {
		http.Error(w, "failed to create item", http.StatusInternalServerError)
		s.logger.Error("create item failed", "error", err)
		return
	}

	writeJSON(w, http.StatusCreated, item, s.logger)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var u domain.ItemUpdate
	if err := decodeJSON(w, r, &u); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := u.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if u.Images != nil {
		if err := validateImages(*u.Images); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if err := s.service.UpdateItem(r.Context(), id, u); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "failed to update item", http.StatusInternalServerError)
		s.logger.Error("update item failed", "item_id", id, "error", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	var in domain.NewLocation
	if err := decodeJSON(w, r, &in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := in.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	loc, err := s.service.AddLocation(r.Context(), in)
	if err != nil {
		http.Error(w, "failed to create location", http.StatusInternalServerError)
		s.logger.Error("create location failed", "error", err)
		return
	}

	writeJSON(w, http.StatusCreated, loc, s.logger)
}
