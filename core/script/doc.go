// Package script runs commands against the external applications.
//
// Each application is driven through one blocking process invocation per command. A
// Client pairs an Executor with the shared rate limiter and turns failed invocations into
// *CommandError values that carry the application and command names.
package script
