package model

// Reply is what a host surface needs to satisfy an interception event.
type Reply struct {
	ContentType string
	Body        []byte
	// StatusCode is the upstream status for passthroughs and the reported
	// status for synthesized pages.
	StatusCode int
	// OK is false whenever Body is a synthesized error page.
	OK bool
}
