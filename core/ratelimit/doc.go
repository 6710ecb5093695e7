// Package ratelimit throttles commands sent to the external applications.
//
// Every editor bridge call and every library script goes through one Limiter built from
// sync.requests_per_minute.
package ratelimit
