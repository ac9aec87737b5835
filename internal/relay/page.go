package relay

import "fmt"

// ErrorPage renders the synthetic page shown in place of a non-200 response.
func ErrorPage(statusCode int) []byte {
	return []byte(fmt.Sprintf("<html><body><h1>Error %d</h1></body></html>", statusCode))
}
