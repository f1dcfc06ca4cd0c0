package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:        "schedq API",
		Version:     "v1",
		Description: "Priority-based round-robin task scheduler",
		Endpoints: []endpointInfo{
			{"/api/v1/tasks", []string{"GET", "POST"}, "List tasks (filter by ?status= and ?priority=) or create one"},
			{"/api/v1/tasks/batch", []string{"POST"}, "Create multiple tasks at once"},
			{"/api/v1/tasks/{id}", []string{"GET", "PATCH", "DELETE"}, "Single task operations"},
			{"/api/v1/stats", []string{"GET"}, "Scheduler statistics"},
			{"/api/v1/stats/sequence", []string{"GET"}, "Execution audit log (one entry per slice)"},
			{"/api/v1/health", []string{"GET"}, "Server health and version"},
		},
	})
}
