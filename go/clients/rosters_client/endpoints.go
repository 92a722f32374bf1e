package rosters_client

const (
	// API Endpoints
	TeamSheetEndpoint = "/teams/%s/sheet"

	// Headers
	APIKeyHeader = "X-API-Key"
)
