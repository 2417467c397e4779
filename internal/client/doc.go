// Package client talks to a running "lanscan serve" instance.
//
// It fetches the latest scan result, triggers new scans and follows the
// websocket feed. Requests are retried with exponential backoff while the
// server is unreachable or has not finished its first scan.
package client
