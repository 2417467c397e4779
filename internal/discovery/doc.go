// Package discovery sweeps the local IPv4 /24 and profiles every host that
// answers.
//
// # Sweep
//
// A Scanner runs through a fixed sequence of states:
//
//	Idle -> Enumerating -> ProbingPrimary -> SweepingRemainder -> Merged -> Done
//	             \-> Failed
//
//  1. Enumerating asks the Enumerator for the gateway and local address and
//     derives the /24 prefix from the gateway. A missing gateway, local
//     address or prefix fails the scan with ErrNoGateway, ErrNoLocalAddress
//     or ErrNoSubnet and no result.
//  2. ProbingPrimary profiles the gateway and then the local host, in that
//     order, whether or not they answer. They always occupy Devices[0] and
//     Devices[1].
//  3. SweepingRemainder starts one unit per remaining address, at most
//     Config.Workers at a time (golang.org/x/sync/semaphore). A unit checks
//     liveness and, if the host answers, samples latency and resolves its
//     name and hardware address.
//  4. Merged waits for every unit, sorts the swept hosts by address and
//     appends them after the primary devices.
//
// # Concurrency
//
// Units never touch shared state. They send their outcome over a channel to
// a single collector goroutine, which builds the host list, updates the
// History and invokes the OnProgress and OnRegression callbacks. Only one
// Scan runs per Scanner; a second concurrent call gets ErrScanInProgress.
//
// # Cancellation
//
// Cancelling the context stops new units from starting. Units already
// running see the cancelled context in their probes and return quickly. Scan
// then returns the devices collected so far with Partial set, together with
// the context error.
//
// # Latency history
//
// The History keeps the last latency per swept address for the life of the
// Scanner. A strictly higher numeric latency than the stored numeric one is
// a Regression: it is logged as a warning and passed to OnRegression but is
// not part of the ScanResult. Policy decides whether timeouts and errors
// replace the stored value.
package discovery
