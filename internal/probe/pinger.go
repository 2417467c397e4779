package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/muurk/lanscan/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/time/rate"
)

// ErrNoReply is returned by a Pinger when no matching echo reply arrived
// before the timeout.
var ErrNoReply = errors.New("no echo reply")

// protocolICMP is the IANA protocol number for ICMPv4.
const protocolICMP = 1

// Pinger sends a single ICMP echo request to addr and returns the round trip
// time. A missing reply is reported as ErrNoReply.
type Pinger interface {
	Ping(ctx context.Context, addr string, timeout time.Duration) (time.Duration, error)
}

// ICMPPinger is a Pinger backed by golang.org/x/net/icmp. Every Ping opens
// its own socket so concurrent callers never read each other's replies.
type ICMPPinger struct {
	// Privileged selects a raw "ip4:icmp" socket instead of the unprivileged
	// "udp4" datagram socket.
	Privileged bool
	// Limiter paces outgoing echo requests. nil means unlimited.
	Limiter *rate.Limiter

	id     int
	seq    atomic.Uint32
	logger *zap.Logger
}

// NewICMPPinger creates a pinger. ratePerSecond <= 0 disables pacing.
func NewICMPPinger(privileged bool, ratePerSecond float64, logger *zap.Logger) *ICMPPinger {
	if logger == nil {
		logger = logging.Named("probe")
	}
	p := &ICMPPinger{
		Privileged: privileged,
		id:         os.Getpid() & 0xffff,
		logger:     logger,
	}
	if ratePerSecond > 0 {
		burst := int(ratePerSecond)
		if burst < 1 {
			burst = 1
		}
		p.Limiter = rate.NewLimiter(rate.Limit(ratePerSecond), burst)
	}
	return p
}

func (p *ICMPPinger) network() string {
	if p.Privileged {
		return "ip4:icmp"
	}
	return "udp4"
}

func (p *ICMPPinger) destination(ip net.IP) net.Addr {
	if p.Privileged {
		return &net.IPAddr{IP: ip}
	}
	return &net.UDPAddr{IP: ip}
}

// Ping implements Pinger.
func (p *ICMPPinger) Ping(ctx context.Context, addr string, timeout time.Duration) (time.Duration, error) {
	ip := net.ParseIP(addr).To4()
	if ip == nil {
		return 0, fmt.Errorf("invalid IPv4 address %q", addr)
	}

	if p.Limiter != nil {
		if err := p.Limiter.Wait(ctx); err != nil {
			return 0, err
		}
	}

	conn, err := icmp.ListenPacket(p.network(), "0.0.0.0")
	if err != nil {
		return 0, fmt.Errorf("open icmp socket: %w", err)
	}
	defer func() {
		_ = conn.Close()
	}()

	seq := int(p.seq.Add(1) & 0xffff)
	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   p.id,
			Seq:  seq,
			Data: []byte("lanscan"),
		},
	}
	payload, err := msg.Marshal(nil)
	if err != nil {
		return 0, fmt.Errorf("marshal echo: %w", err)
	}

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return 0, fmt.Errorf("set deadline: %w", err)
	}

	start := time.Now()
	if _, err := conn.WriteTo(payload, p.destination(ip)); err != nil {
		return 0, fmt.Errorf("send echo: %w", err)
	}

	buf := make([]byte, 1500)
	for {
		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				if ctx.Err() != nil {
					return 0, ctx.Err()
				}
				return 0, ErrNoReply
			}
			return 0, fmt.Errorf("read reply: %w", err)
		}

		if !p.matches(buf[:n], peer, ip, seq) {
			continue
		}

		rtt := time.Since(start)
		p.logger.Debug("echo reply",
			zap.String("addr", addr),
			zap.Int("seq", seq),
			zap.Duration("rtt", rtt),
		)
		return rtt, nil
	}
}

// matches reports whether raw is the echo reply to our request. Datagram
// sockets have their echo ID rewritten by the kernel, so the ID is only
// checked on raw sockets.
func (p *ICMPPinger) matches(raw []byte, peer net.Addr, ip net.IP, seq int) bool {
	if !peerIP(peer).Equal(ip) {
		return false
	}

	reply, err := icmp.ParseMessage(protocolICMP, raw)
	if err != nil || reply.Type != ipv4.ICMPTypeEchoReply {
		return false
	}

	echo, ok := reply.Body.(*icmp.Echo)
	if !ok || echo.Seq != seq {
		return false
	}
	return !p.Privileged || echo.ID == p.id
}

func peerIP(addr net.Addr) net.IP {
	switch v := addr.(type) {
	case *net.UDPAddr:
		return v.IP
	case *net.IPAddr:
		return v.IP
	default:
		return nil
	}
}

// Prober answers the liveness question for a single address.
type Prober struct {
	Pinger  Pinger
	Timeout time.Duration
}

// DefaultAliveTimeout is how long Alive waits for an echo reply.
const DefaultAliveTimeout = time.Second

// Alive reports whether addr answered one echo within the timeout. Every
// error, including a malformed address, counts as not alive.
func (p *Prober) Alive(ctx context.Context, addr string) bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultAliveTimeout
	}

	_, err := p.Pinger.Ping(ctx, addr, timeout)
	logging.LogProbe(addr, err == nil, err)
	return err == nil
}
