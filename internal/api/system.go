package api

import (
	"encoding/json"
	"net/http"
)

// resetConfirmation must be sent verbatim to reset the emulator.
const resetConfirmation = "FACTORY RESET"

// ResetRequest defines what a reset clears.
type ResetRequest struct {
	ResetRegisters bool   `json:"reset_registers"`
	ClearJournal   bool   `json:"clear_journal"`
	Confirm        string `json:"confirm"`
}

// ResetResponse reports what a reset changed.
type ResetResponse struct {
	Status           string `json:"status"`
	RegistersChanged int    `json:"registers_changed"`
	BatchesDeleted   int    `json:"batches_deleted"`
}

// handleReset restores catalog register values and/or empties the write
// journal, so a client test suite can start from a known unit.
//
// The request must include an exact confirmation string.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Confirm != resetConfirmation {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, `confirm field must be exactly "`+resetConfirmation+`"`)
		return
	}
	if !req.ResetRegisters && !req.ClearJournal {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "at least one of reset_registers or clear_journal must be true")
		return
	}
	if req.ClearJournal && s.audit == nil {
		writeNotEnabled(w, "write journal not enabled")
		return
	}

	resp := ResetResponse{Status: "ok"}

	if req.ClearJournal {
		n, err := s.audit.Purge(r.Context())
		if err != nil {
			s.logger.Error("reset: failed to clear write journal", "error", err)
			writeInternalError(w, "failed to clear write journal")
			return
		}
		resp.BatchesDeleted = n
	}
	if req.ResetRegisters {
		resp.RegistersChanged = s.unit.Reset()
	}

	s.logger.Info("emulator reset",
		"registers_changed", resp.RegistersChanged,
		"batches_deleted", resp.BatchesDeleted,
		"request_id", requestID(r),
	)
	writeJSON(w, http.StatusOK, resp)
}
