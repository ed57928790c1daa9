// Package buildinfo exposes the version stamped into the entregaveis binary.
package buildinfo

import (
	"encoding/json"
	"net/http"
	"runtime"
)

// Set at build time:
//
//	go build -ldflags "-X github.com/otherjamesbrown/entregaveis/pkg/buildinfo.Version=v0.3.0 \
//	  -X github.com/otherjamesbrown/entregaveis/pkg/buildinfo.Commit=1a2b3c4 \
//	  -X github.com/otherjamesbrown/entregaveis/pkg/buildinfo.BuildTime=2026-10-16T09:00:00Z"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// AppName is the binary and service name used in logs, metrics and the user agent.
const AppName = "entregaveis"

// Info holds build information.
type Info struct {
	ServiceName string `json:"service_name" yaml:"service_name"`
	Version     string `json:"version" yaml:"version"`
	Commit      string `json:"commit" yaml:"commit"`
	BuildTime   string `json:"build_time" yaml:"build_time"`
	GoVersion   string `json:"go_version" yaml:"go_version"`
}

// Get returns build info for the named service.
func Get(serviceName string) Info {
	return Info{
		ServiceName: serviceName,
		Version:     Version,
		Commit:      Commit,
		BuildTime:   BuildTime,
		GoVersion:   runtime.Version(),
	}
}

// String returns a one-liner like "v0.3.0 (1a2b3c4, 2026-10-16T09:00:00Z)".
func String() string {
	return Version + " (" + Commit + ", " + BuildTime + ")"
}

// UserAgent is sent on outbound model requests.
func UserAgent() string {
	return AppName + "/" + Version
}

// Handler responds with build info JSON; mounted at /version next to /metrics.
func Handler(serviceName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Get(serviceName))
	}
}
