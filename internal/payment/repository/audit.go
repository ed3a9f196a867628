package repository

import (
	"context"
	"net"

	db "github.com/Swyp/Swyp-Backend/db/sqlc"
	"github.com/Swyp/Swyp-Backend/internal/payment/domain"
	"github.com/Swyp/Swyp-Backend/internal/payment/mapper"
	"github.com/sqlc-dev/pqtype"
)

func recordStatusEvent(ctx context.Context, q *db.Queries, t domain.Transition) error {
	actor := t.Actor
	if actor == "" {
		actor = domain.ActorSystem
	}
	reason := t.Reason
	if reason == "" {
		reason = t.FailureReason
	}

	_, err := q.CreatePaymentStatusEvent(ctx, db.CreatePaymentStatusEventParams{
		PaymentID:  t.PaymentID,
		FromStatus: t.From.String(),
		ToStatus:   t.To.String(),
		Reason:     mapper.ToNullString(reason),
		Actor:      actor,
		IpAddress:  toInet(t.IPAddress),
	})
	return err
}

func toInet(ip string) pqtype.Inet {
	if ip == "" {
		return pqtype.Inet{Valid: false}
	}

	// CIDR form, e.g. "192.168.1.0/24"
	if _, ipNet, err := net.ParseCIDR(ip); err == nil {
		return pqtype.Inet{
			IPNet: *ipNet,
			Valid: true,
		}
	}

	if parsedIP := net.ParseIP(ip); parsedIP != nil {
		// Single host: /32 for IPv4, /128 for IPv6
		var mask net.IPMask
		if v4 := parsedIP.To4(); v4 != nil {
			parsedIP = v4
			mask = net.CIDRMask(32, 32)
		} else {
			mask = net.CIDRMask(128, 128)
		}
		return pqtype.Inet{
			IPNet: net.IPNet{IP: parsedIP, Mask: mask},
			Valid: true,
		}
	}

	return pqtype.Inet{Valid: false}
}
