package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/ventsim-core/internal/register"
)

// RegisterView is a register as the admin API reports it. Address is
// zero-based, matching the device endpoints.
type RegisterView struct {
	Address  int    `json:"address"`
	Name     string `json:"name,omitempty"`
	Value    int    `json:"value"`
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	ReadOnly bool   `json:"read_only"`
}

// RegisterListResponse is the body of GET /api/v1/registers.
type RegisterListResponse struct {
	CatalogVersion string         `json:"catalog_version"`
	Count          int            `json:"count"`
	Registers      []RegisterView `json:"registers"`
}

func newRegisterView(r register.Register) RegisterView {
	return RegisterView{
		Address:  r.Address - 1,
		Name:     r.Name,
		Value:    r.Value,
		Min:      r.Min,
		Max:      r.Max,
		ReadOnly: r.ReadOnly,
	}
}

// handleListRegisters returns every register in address order.
//
// Query parameters:
//   - read_only: "true" or "false" to keep only registers with that flag
func (s *Server) handleListRegisters(w http.ResponseWriter, r *http.Request) {
	var readOnly *bool
	if v := r.URL.Query().Get("read_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeBadRequest(w, "read_only must be true or false")
			return
		}
		readOnly = &b
	}

	snapshot := s.unit.Table().Snapshot()
	views := make([]RegisterView, 0, len(snapshot))
	for _, reg := range snapshot {
		if readOnly != nil && reg.ReadOnly != *readOnly {
			continue
		}
		views = append(views, newRegisterView(reg))
	}

	writeJSON(w, http.StatusOK, RegisterListResponse{
		CatalogVersion: register.CatalogVersion,
		Count:          len(views),
		Registers:      views,
	})
}

// handleGetRegister returns one register by zero-based address. Unlike
// /mread, an address the unit does not hold is a 404.
func (s *Server) handleGetRegister(w http.ResponseWriter, r *http.Request) {
	addr, err := strconv.Atoi(chi.URLParam(r, "address"))
	if err != nil || addr < 0 {
		writeBadRequest(w, "address must be a non-negative integer")
		return
	}

	reg, ok := s.unit.Table().Get(addr + 1)
	if !ok {
		writeNotFound(w, "register not found")
		return
	}
	writeJSON(w, http.StatusOK, newRegisterView(reg))
}
