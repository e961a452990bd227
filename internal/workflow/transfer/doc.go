// Package transfer implements the saga-style account transfer: account
// activities with envelope-translated business failures, and the workflow that
// sequences them under the host's retry policy and maps failures to a
// structured result.
package transfer
