package dto

type HealthResponse struct {
	Status   string          `json:"status"`
	Services map[string]bool `json:"services"`
	Sessions int             `json:"sessions"`
	Chunks   int             `json:"chunks"`
}

type RootResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}
