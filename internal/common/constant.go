// Package common contains shared constants and sentinel errors used across
// BlogPulse components.
package common

// RefreshTokenCookieName is the cookie that transports the refresh token
// between the browser and the auth endpoints. The same cookie is presented
// during the websocket handshake.
const RefreshTokenCookieName = "refreshToken"

// UnreadCountEvent is the push event emitted whenever a user's unread
// notification counter changes.
const UnreadCountEvent = "notification:unread-count"
