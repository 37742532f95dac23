package api

// DeviceCode is the response to a device authorization request.
type DeviceCode struct {
	DeviceCode              string `json:"device_code"`
	UserCode                string `json:"user_code"`
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete"`
	Interval                int    `json:"interval"`
	ExpiresIn               int    `json:"expires_in"`
}

// Token is the response to a successful device-code exchange.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope"`
}

// TokenInfo describes the state of an access token.
type TokenInfo struct {
	Active   bool   `json:"active"`
	Scope    string `json:"scope"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
}

// Project is a worklog project.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Identifier  string `json:"identifier"`
	Description string `json:"description,omitempty"`
}

// Repository is a tracked source repository linked to a project.
type Repository struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	RemoteURL string `json:"remote_url"`
	ProjectID string `json:"project_id"`
}

// Entry is a single worklog entry.
type Entry struct {
	ID         string   `json:"id"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	ProjectID  string   `json:"project_id"`
	InsertedAt string   `json:"inserted_at"`
}

// EntryPage is one page of worklog entries with a pagination cursor.
type EntryPage struct {
	Entries []Entry  `json:"entries"`
	Meta    PageMeta `json:"meta"`
}

// PageMeta carries cursor pagination state.
type PageMeta struct {
	EndCursor string `json:"end_cursor"`
}

// Commit is a captured git commit as known to the backend.
type Commit struct {
	SHA         string `json:"sha"`
	Message     string `json:"message"`
	CommittedAt string `json:"committed_at"`
}

// RecapJob is the handle returned by a recap submission. Status is either
// "completed" (cache hit) or "processing"; SSEURL is set when the server
// offers a push channel for completion events.
type RecapJob struct {
	RecapID string `json:"recap_id"`
	Status  string `json:"status"`
	PollURL string `json:"poll_url,omitempty"`
	SSEURL  string `json:"sse_url,omitempty"`
}

// RecapMetadata summarizes the worklog data behind a generated recap. All
// fields default to empty/zero when the backend omits them.
type RecapMetadata struct {
	EntryCount int      `json:"entry_count"`
	Projects   []string `json:"projects"`
	Tags       []string `json:"tags"`
}

// RecapFilters echoes the filters the backend applied to a recap.
type RecapFilters struct {
	ProjectIDs []string `json:"project_ids"`
	Tags       []string `json:"tags"`
}

// RecapStatus is one status snapshot for a recap job. Content is nil until
// the recap completes; Metadata and Filters may lag Content on an eventually
// consistent backend.
type RecapStatus struct {
	Status   string         `json:"status"`
	Content  *string        `json:"content,omitempty"`
	Metadata *RecapMetadata `json:"metadata,omitempty"`
	Filters  *RecapFilters  `json:"filters,omitempty"`
}

// Recap job status values shared by the poll and push channels.
const (
	RecapStatusProcessing = "processing"
	RecapStatusCompleted  = "completed"
	RecapStatusFailed     = "failed"
)
