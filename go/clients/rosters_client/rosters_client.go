package rosters_client

import (
	"time"

	"github.com/mcdev12/scorekeeper/go/clients"
)

// RostersClient fetches team sheets from the roster service.
type RostersClient struct {
	*clients.BaseClient
}

func NewRostersClient(baseURL, apiKey string, timeout time.Duration) *RostersClient {
	opts := []clients.Option{clients.WithTimeout(timeout)}
	if apiKey != "" {
		opts = append(opts, clients.WithHeader(APIKeyHeader, apiKey))
	}
	return &RostersClient{BaseClient: clients.NewBaseClient(baseURL, opts...)}
}
