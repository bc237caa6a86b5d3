package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme prefixes the access token inside the Authorization header.
const BearerScheme = "Bearer"
