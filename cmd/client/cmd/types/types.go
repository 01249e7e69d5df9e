package types

// ContextKey keys the values the root command injects into the command
// context.
type ContextKey string

const ClientAppKey ContextKey = "clientApp"
