package cluster

import (
	"encoding/json"
	"net/http"
)

// healthStatus é o corpo da resposta do /health.
type healthStatus struct {
	Status      string `json:"status"`
	Sessions    int    `json:"sessions"`
	Connections int    `json:"connections"`
}

// NewHealthHandler retorna o http.HandlerFunc do liveness check que o Consul
// consulta. Além do 200, ele expõe os contadores do relay, o que já serve de
// visão rápida num curl durante o desenvolvimento.
func NewHealthHandler(stats func() (sessions, connections int)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, connections := stats()

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(healthStatus{
			Status:      "ok",
			Sessions:    sessions,
			Connections: connections,
		})
	}
}
