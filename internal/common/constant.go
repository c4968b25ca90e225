package common

// AccessTokenHeaderName is the gRPC metadata key that carries the session
// token on inbound requests.
const AccessTokenHeaderName = "access_token"

// PageSize caps every list-style query.
const PageSize = 10
