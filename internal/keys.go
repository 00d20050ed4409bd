package internal

const (
	COOKIE_ACCESS_TOKEN_NAME = "brgygo_at"
	COOKIE_SESSION_NAME      = "brgygo_sid"
	COOKIE_REDIRECT_NAME     = "brgygo_redirect"
)

const (
	REDIS_SESSION_PREFIX = "brgygo:session:"
	REDIS_PROFILE_PREFIX = "brgygo:profile:"
)
