// Package statuspage is a typed client for the public v2 API of pages hosted
// by Statuspage.
//
// A Client fetches the summary, status, components and incidents of a page:
//
//	client, err := statuspage.NewClient("https://www.githubstatus.com")
//	if err != nil {
//		return err
//	}
//	status, err := client.Status(ctx)
//
// Responses are validated against the vendor schema before they are decoded,
// so a returned value is always complete. Failures are reported as
// *TransportError, *StatusError or *DecodeError.
package statuspage
