package model

// ResultKind discriminates a FetchResult.
type ResultKind int

const (
	// KindSuccess is an upstream 200 passed through unchanged.
	KindSuccess ResultKind = iota + 1
	// KindFailure is a synthesized error page.
	KindFailure
)

func (k ResultKind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// HTMLContentType is used for synthesized pages and as the default when an
// upstream 200 carries no Content-Type.
const HTMLContentType = "text/html"

// FetchResult is the single outcome retained for one relayed request.
type FetchResult struct {
	Kind        ResultKind
	StatusCode  int
	ContentType string
	Body        []byte
	// URL is the candidate whose outcome was retained; empty when no
	// candidate produced a response.
	URL string
}

// NewSuccess builds a passthrough result.
func NewSuccess(statusCode int, contentType string, body []byte, url string) *FetchResult {
	return &FetchResult{
		Kind:        KindSuccess,
		StatusCode:  statusCode,
		ContentType: contentType,
		Body:        body,
		URL:         url,
	}
}

// NewFailure builds a synthesized error result. Its content type is always HTML.
func NewFailure(statusCode int, body []byte, url string) *FetchResult {
	return &FetchResult{
		Kind:        KindFailure,
		StatusCode:  statusCode,
		ContentType: HTMLContentType,
		Body:        body,
		URL:         url,
	}
}

func (r *FetchResult) Success() bool { return r != nil && r.Kind == KindSuccess }

func (r *FetchResult) Failure() bool { return r != nil && r.Kind == KindFailure }

// Reply converts r into the host surface reply contract.
func (r *FetchResult) Reply() Reply {
	if r == nil {
		return Reply{}
	}
	return Reply{
		ContentType: r.ContentType,
		Body:        r.Body,
		StatusCode:  r.StatusCode,
		OK:          r.Success(),
	}
}
