// Package server implements the lanscan live feed.
//
// The server runs a scan every interval and serves the latest result:
//
//	GET  /api/scan   latest ScanResult as JSON (503 until a scan completes)
//	POST /api/scan   start a scan now (202; ignored while one is running)
//	GET  /ws         websocket stream of Event messages
//
// Websocket clients receive the latest result on connect, then an event
// for every finished scan ({"type":"scan"}) and every latency regression
// ({"type":"regression"}). Clients that cannot keep up are disconnected.
// Connections are kept alive with ping/pong.
//
// # Usage
//
//	hub := server.NewHub(logger)
//	scanner, _ := discovery.New(components, discovery.Config{
//	    OnRegression: hub.OnRegression,
//	}, logger)
//
//	srv, err := server.New(server.Config{Addr: ":8080"}, scanner.Scan, hub, logger)
//	if err != nil {
//	    return err
//	}
//	return srv.Start(ctx) // returns after ctx is cancelled
//
// # TLS
//
// When CertPath and KeyPath are set the listener is wrapped with TLS 1.2+.
package server
