// Package probe sends ICMP echo requests and turns their outcomes into
// reachability answers and latency measurements.
//
// # Pinger
//
// A Pinger sends one echo request and waits for the matching reply. The
// production implementation, ICMPPinger, uses golang.org/x/net/icmp over an
// unprivileged datagram socket ("udp4") by default, or a raw socket
// ("ip4:icmp") when Privileged is set. A timeout is reported as ErrNoReply
// so callers can tell it apart from mechanism failures such as a missing
// socket permission.
//
// All ICMPPinger instances built from one Limiter share a token bucket, so a
// wide sweep does not flood the segment.
//
// # Liveness
//
// Prober.Alive sends a single echo with a short timeout. Any failure counts
// as not alive.
//
// # Latency
//
// Sampler.Sample sends Count echoes with Interval between them and reduces
// the results to a Latency:
//
//	all echoes failed with ErrNoReply   -> TimedOut
//	at least one reply                  -> Measured(floor(mean))
//	any other error                     -> Failed(msg), sampling stops
//
// Latency renders itself the way the device table shows it: "23 ms",
// "Request timed out" or "Error: <msg>".
package probe
