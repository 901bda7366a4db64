package api

import (
	"net/http"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data, err := s.getSummaryData()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleDeepDive(w http.ResponseWriter, r *http.Request) {
	data, err := s.getDeepDiveData()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := s.tmpl.ExecuteTemplate(w, "deepdive.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleStatePage(w http.ResponseWriter, r *http.Request) {
	current, err := s.store.GetStateRecords(s.cfg.Year)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := &StateData{Year: s.cfg.Year}
	for _, rec := range current {
		data.States = append(data.States, rec.State)
	}

	if name := r.URL.Query().Get("name"); name != "" {
		series, err := s.store.GetStateSeries(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if len(series) == 0 {
			http.NotFound(w, r)
			return
		}
		rec, err := s.store.GetStateRecord(name, s.cfg.Year)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data.Name = name
		data.Series = series
		data.Current = rec
	}

	if err := s.tmpl.ExecuteTemplate(w, "state.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	data := &MapData{
		Year:    s.cfg.Year,
		Metrics: mapMetrics,
		HasGeo:  s.geo != nil,
	}

	if s.geo != nil {
		states, err := s.store.GetStateRecords(s.cfg.Year)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		names := make([]string, len(states))
		for i, st := range states {
			names[i] = st.State
		}
		diff := s.geo.DiffStates(names)
		data.Diff = &diff
	}

	if err := s.tmpl.ExecuteTemplate(w, "map.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
