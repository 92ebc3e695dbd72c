package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the access
// token on inbound requests.
const AccessTokenHeaderName = "access_token"

// MainShade is the palette key treated as a palette's main value.
const MainShade = "500"
