package api

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/ventsim-core/internal/firmware"
	"github.com/nerrad567/ventsim-core/internal/unit"
)

// =============================================================================
// Device endpoints
//
// These reproduce the unit's own web API byte for byte where clients depend
// on it: key names, string-typed flags and plain-text error bodies.
// =============================================================================

// notAvailable fills version slots the emulated unit has no chip for.
const notAvailable = "N/A"

// Update file identifier reported while an update runs.
const updatingFile = "30301"

// MenuResponse is the body of GET /menu.
type MenuResponse struct {
	MAC       string `json:"mac"`
	Mainboard string `json:"mb"`
	Cloud     string `json:"cloud"`
	CfgStatus string `json:"cfg_status"`
	Mode      string `json:"mode"`
}

// UnitVersionResponse is the body of GET /unit_version.
type UnitVersionResponse struct {
	MainboardSoftware string `json:"MB SW version"`
	MainboardHardware string `json:"MB HW version"`
	Model             string `json:"MB Model"`
	ItemNumber        string `json:"System Item Number"`
	SerialNumber      string `json:"System Serial Number"`
	IAMSoftware       string `json:"IAM SW version"`
}

// FlashVersions lists the image versions held in one flash bank.
type FlashVersions struct {
	MainboardFile    string `json:"MB_file ver"`
	HMIFile          string `json:"HMI_file ver"`
	HMIResourcesFile string `json:"HMI_resources_file ver"`
	MainboardL486    string `json:"MB_l486 ver"`
	HMISTM           string `json:"HMI_STM ver"`
	MainboardG487    string `json:"MB_G487 ver"`
}

// FileVersionResponse is the body of GET /file_ver.
type FileVersionResponse struct {
	Mainboard   FlashVersions `json:"MB_flash"`
	HMIs        []string      `json:"HMIs"`
	IAM         FlashVersions `json:"IAM_flash"`
	StartUpdate string        `json:"Start_update"`
}

// UploadResponse is the body of POST /upload/{filename}.
type UploadResponse struct {
	Files []string `json:"fw_list"`
}

// UpdateStatusResponse is the body of GET /status_upd.
type UpdateStatusResponse struct {
	Status     int    `json:"status"`
	File       string `json:"file"`
	Percentage int    `json:"percentage"`
}

// handleMenu returns the unit's network and cloud flags.
func (s *Server) handleMenu(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MenuResponse{
		MAC:       s.unit.Info().MAC,
		Mainboard: "1",
		Cloud:     "0",
		CfgStatus: "1",
		Mode:      "1",
	})
}

// handleUnitVersion returns hardware identity and installed firmware.
func (s *Server) handleUnitVersion(w http.ResponseWriter, _ *http.Request) {
	info := s.unit.Info()
	writeJSON(w, http.StatusOK, UnitVersionResponse{
		MainboardSoftware: s.installed(firmware.ComponentMainboard),
		MainboardHardware: info.HardwareVersion,
		Model:             info.Model,
		ItemNumber:        info.ItemNumber,
		SerialNumber:      info.SerialNumber,
		IAMSoftware:       s.installed(firmware.ComponentIAM),
	})
}

// handleMRead reads registers named by a URL-encoded JSON object.
//
// Request: GET /mread?{"<zero-based address>":1,...}
// Response: the same keys mapped to current values. Addresses the unit does
// not hold read as 0.
func (s *Server) handleMRead(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.batchQuery(w, r)
	if !ok {
		return
	}

	keys, err := unit.DecodeReadBatch(payload)
	if err != nil {
		s.logger.Debug("mread rejected", "error", err, "request_id", requestID(r))
		writeText(w, http.StatusBadRequest, msgQueryInvalid)
		return
	}

	addresses := make([]int, len(keys))
	for i, k := range keys {
		addresses[i] = k.Address
	}
	values := s.unit.ReadRegisters(addresses)

	out := make(map[string]int, len(keys))
	for _, k := range keys {
		out[k.Key] = values[k.Address]
	}
	writeJSON(w, http.StatusOK, out)
}

// handleMWrite applies a URL-encoded JSON object of register writes.
//
// Request: GET /mwrite?{"<zero-based address>":<value>,...}
// Response: "OK". Malformed entries are skipped; the rest still apply.
func (s *Server) handleMWrite(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.batchQuery(w, r)
	if !ok {
		return
	}

	entries, err := unit.DecodeWriteBatch(payload)
	if err != nil {
		s.logger.Debug("mwrite rejected", "error", err, "request_id", requestID(r))
		writeText(w, http.StatusBadRequest, msgQueryInvalid)
		return
	}

	s.unit.WriteRegisters(r.Context(), unit.WriteRequest{
		Source:    unit.SourceHTTP,
		RequestID: requestID(r),
		Entries:   entries,
	})
	writeText(w, http.StatusOK, "OK")
}

// batchQuery extracts the JSON batch carried as the raw query string.
// It writes the error response itself and reports false on failure.
func (s *Server) batchQuery(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.URL.RawQuery == "" {
		writeText(w, http.StatusBadRequest, msgQueryEmpty)
		return nil, false
	}
	return unescapeQuery(r.URL.RawQuery), true
}

// unescapeQuery decodes a form-encoded query leniently: '+' becomes a space,
// valid %XX sequences are decoded and a '%' that does not start one is kept
// as is. Malformed JSON is left for the batch decoder to reject.
func unescapeQuery(raw string) []byte {
	if decoded, err := url.QueryUnescape(raw); err == nil {
		return []byte(decoded)
	}

	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		switch c := raw[i]; {
		case c == '+':
			out = append(out, ' ')
		case c == '%' && i+2 < len(raw) && isHex(raw[i+1]) && isHex(raw[i+2]):
			out = append(out, unhex(raw[i+1])<<4|unhex(raw[i+2]))
			i += 2
		default:
			out = append(out, c)
		}
	}
	return out
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	default:
		return c - '0'
	}
}

// handleFileVersion reports flash contents and whether an uploaded image
// would update the unit.
func (s *Server) handleFileVersion(w http.ResponseWriter, _ *http.Request) {
	startUpdate := "false"
	if img, ok := s.firmware.UpdateAvailable(); ok {
		s.logger.Debug("newer firmware uploaded", "component", img.Type, "version", img.Version.String())
		startUpdate = "true"
	}

	writeJSON(w, http.StatusOK, FileVersionResponse{
		Mainboard: FlashVersions{
			MainboardFile:    s.installed(firmware.ComponentMainboard),
			HMIFile:          s.installed(firmware.ComponentHMISoftware),
			HMIResourcesFile: s.installed(firmware.ComponentHMIResources),
			MainboardL486:    notAvailable,
			HMISTM:           notAvailable,
			MainboardG487:    notAvailable,
		},
		HMIs: []string{},
		IAM: FlashVersions{
			MainboardFile:    s.installed(firmware.ComponentIAM),
			HMIFile:          notAvailable,
			HMIResourcesFile: notAvailable,
			MainboardL486:    notAvailable,
			HMISTM:           notAvailable,
			MainboardG487:    notAvailable,
		},
		StartUpdate: startUpdate,
	})
}

// handleUpload records an uploaded image by name. The body is not stored.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	files, err := s.firmware.Upload(chi.URLParam(r, "filename"))
	if err != nil {
		if errors.Is(err, firmware.ErrInvalidFileName) {
			writeText(w, http.StatusBadRequest, "Invalid file name.")
			return
		}
		s.logger.Error("firmware upload failed", "error", err)
		writeText(w, http.StatusInternalServerError, "Upload failed.")
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{Files: files})
}

// handleFirmwareList returns uploaded image names in upload order.
func (s *Server) handleFirmwareList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.firmware.Files())
}

// handleStartUpdate starts the update progress counter. Starting while an
// update runs is accepted and changes nothing.
func (s *Server) handleStartUpdate(w http.ResponseWriter, _ *http.Request) {
	if !s.firmware.StartUpdate() {
		s.logger.Debug("update already running")
	}
	writeText(w, http.StatusOK, "OK")
}

// handleUpdateStatus reports update progress. An idle unit reports 100 %.
func (s *Server) handleUpdateStatus(w http.ResponseWriter, _ *http.Request) {
	st := s.firmware.Status()
	if !st.Updating {
		writeJSON(w, http.StatusOK, UpdateStatusResponse{Status: 0, File: "0", Percentage: 100})
		return
	}
	writeJSON(w, http.StatusOK, UpdateStatusResponse{Status: 1, File: updatingFile, Percentage: st.Percentage})
}

// installed returns the installed version of component as a string.
func (s *Server) installed(component string) string {
	v, ok := s.firmware.Installed(component)
	if !ok {
		return notAvailable
	}
	return v.String()
}
