package shared

import (
	"net/http"
	"strconv"
)

// ActorHeader carries the operator id forwarded by the dashboard gateway.
// Authentication itself happens upstream; this service only attributes
// actions for the audit trail.
const ActorHeader = "X-Actor-ID"

// ActorFromRequest extracts the acting operator's id, defaulting to 1 when
// the header is absent or malformed.
func ActorFromRequest(r *http.Request) int64 {
	if id, err := strconv.ParseInt(r.Header.Get(ActorHeader), 10, 64); err == nil && id > 0 {
		return id
	}
	return 1
}
