// Package common contains shared constants and sentinel errors used across
// devconnector components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer credential.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the authentication scheme expected in AuthorizationHeaderName.
const BearerScheme = "Bearer"

// TokenMetadataKey is the well-known local storage key under which the
// client persists its current session token.
const TokenMetadataKey = "token"
