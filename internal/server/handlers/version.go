package handlers

import (
	"net/http"
)

// VersionResponse identifies the running binary.
type VersionResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

const appName = "splunkmcp"

// VersionHandler reports the binary name and version recorded at
// InitHealthManager time.
func VersionHandler(w http.ResponseWriter, r *http.Request) {
	m := GetHealthManager()
	version := "dev"
	if m != nil {
		version = m.version
	}
	writeJSON(w, http.StatusOK, VersionResponse{Name: appName, Version: version})
}
