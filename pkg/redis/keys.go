package redis

import "strings"

const keyNamespace = "pos"

// key joins the non-blank parts under the pos namespace.
func key(parts ...string) string {
	var b strings.Builder
	b.WriteString(keyNamespace)
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			b.WriteByte(':')
			b.WriteString(p)
		}
	}
	return b.String()
}

func (c *Client) IdempotencyKey(scope, id string) string {
	return key("idempotency", scope, id)
}

func (c *Client) RateLimitKey(scope string) string {
	return key("rate_limit", scope)
}

// AccessSessionKey indexes the refresh token minted with an access token jti.
func (c *Client) AccessSessionKey(accessID string) string {
	return key("session", "access", accessID)
}
