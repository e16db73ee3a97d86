// Package health reports whether the components a process depends on are ready.
package health

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/pokt-network/poktroll/pkg/polylog"
)

const (
	// The image tag is set to the value of the IMAGE_TAG environment variable at build time.
	imageTagEnvVar = "IMAGE_TAG"
	// If the image tag is not set, the default value is "development".
	defaultImageTag = "development"
)

// The status of the health check component.
type healthCheckStatus string

const (
	// statusReady indicates that all components are ready
	statusReady healthCheckStatus = "ready"
	// statusNotReady indicates that one or more components are not ready,
	// e.g. the gateway has not answered a poll recently.
	statusNotReady healthCheckStatus = "not_ready"
)

type (
	// health.Checker serves the readiness of all registered components.
	Checker struct {
		Logger     polylog.Logger
		Components []Check
		// GatewayURL is reported as-is in the response body when set.
		GatewayURL string
	}

	// health.Check is an interface that must be implemented
	// by components that need to report their health status
	Check interface {
		Name() string  // Name returns the name of the component being checked.
		IsAlive() bool // IsAlive returns true if the component is healthy, otherwise false.
	}
)

// healthCheckJSON is the JSON structure of the response body
// returned by the `/healthz` endpoint along with the status code.
type healthCheckJSON struct {
	Status     healthCheckStatus `json:"status"`
	ImageTag   string            `json:"imageTag"`
	GatewayURL string            `json:"gatewayURL,omitempty"`
	// ReadyStates is a map of component names to their ready status
	ReadyStates map[string]bool `json:"readyStates,omitempty"`
}

// HealthzHandler returns 200 OK if all components are ready and 503 Service Unavailable otherwise.
func (c *Checker) HealthzHandler(w http.ResponseWriter, _ *http.Request) {
	readyStates := c.getComponentReadyStates()
	status := getStatus(readyStates)

	responseBytes := c.getHealthCheckResponse(status, readyStates)
	if responseBytes == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if status == statusReady {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if _, err := w.Write(responseBytes); err != nil {
		c.Logger.Error().Err(err).Msg("error writing health check response")
	}
}

// IsReady returns true if every component is alive.
func (c *Checker) IsReady() bool {
	return getStatus(c.getComponentReadyStates()) == statusReady
}

func (c *Checker) getHealthCheckResponse(status healthCheckStatus, readyStates map[string]bool) []byte {
	imageTag := os.Getenv(imageTagEnvVar)
	if imageTag == "" {
		imageTag = defaultImageTag
	}

	responseBytes, err := json.Marshal(healthCheckJSON{
		Status:      status,
		ImageTag:    imageTag,
		GatewayURL:  c.GatewayURL,
		ReadyStates: readyStates,
	})
	if err != nil {
		c.Logger.Error().Err(err).Msg("error marshaling health check response")
		return nil
	}
	return responseBytes
}

// getComponentReadyStates returns a map of component names to their ready status
func (c *Checker) getComponentReadyStates() map[string]bool {
	readyStates := make(map[string]bool, len(c.Components))
	for _, component := range c.Components {
		readyStates[component.Name()] = component.IsAlive()
	}
	return readyStates
}

// getStatus returns statusNotReady if any component is not ready
func getStatus(readyStates map[string]bool) healthCheckStatus {
	for _, ready := range readyStates {
		if !ready {
			return statusNotReady
		}
	}
	return statusReady
}
