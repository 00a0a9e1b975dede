package config

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// ClientIdentity is an opaque, stable identifier for the current caller,
// scoped to the lifetime of one transport session. It never carries
// credentials; use SplunkConfig for that.
type ClientIdentity struct {
	// ID is the opaque identifier, derived per the precedence in
	// DeriveClientIdentity.
	ID string

	// Origin records which derivation strategy produced ID, for
	// diagnostics only.
	Origin string
}

// String implements fmt.Stringer, redacting nothing since ClientIdentity
// carries no sensitive data, but kept for symmetry with other identity
// types in this codebase.
func (c ClientIdentity) String() string {
	return fmt.Sprintf("ClientIdentity{ID:%q, Origin:%q}", c.ID, c.Origin)
}

// DeriveClientIdentity computes a ClientIdentity from, in priority order:
// an explicit session identifier issued by the transport; a hash of the
// config source tuple (host/username/token presence) when no session id
// is available; or a freshly minted synthetic id for stdio sessions that
// have neither.
func DeriveClientIdentity(transportSessionID string, cfg SplunkConfig) ClientIdentity {
	if transportSessionID != "" {
		return ClientIdentity{ID: transportSessionID, Origin: "transport_session"}
	}
	if cfg.Host != "" {
		h := sha256.New()
		fmt.Fprintf(h, "host=%s\nusername=%s\ntoken_set=%t\n", cfg.Host, cfg.Username, cfg.Token != "")
		return ClientIdentity{ID: hex.EncodeToString(h.Sum(nil))[:32], Origin: "config_hash"}
	}
	return ClientIdentity{ID: "stdio-" + uuid.NewString(), Origin: "synthetic"}
}

// identityContextKey is an unexported type so context keys set by this
// package can never collide with keys from other packages.
type identityContextKey struct{}

// configContextKey stores the resolved SplunkConfig alongside the identity.
type configContextKey struct{}

// WithIdentity returns a new context carrying identity.
func WithIdentity(ctx context.Context, identity ClientIdentity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext retrieves the ClientIdentity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (ClientIdentity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(ClientIdentity)
	return identity, ok
}

// WithSplunkConfig returns a new context carrying the resolved SplunkConfig.
func WithSplunkConfig(ctx context.Context, cfg SplunkConfig) context.Context {
	return context.WithValue(ctx, configContextKey{}, cfg)
}

// SplunkConfigFromContext retrieves the SplunkConfig stored by WithSplunkConfig.
func SplunkConfigFromContext(ctx context.Context) (SplunkConfig, bool) {
	cfg, ok := ctx.Value(configContextKey{}).(SplunkConfig)
	return cfg, ok
}
