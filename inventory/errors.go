// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"fmt"
	"net/http"
)

// RemoteServiceError wraps a failure talking to PuppetDB.
type RemoteServiceError struct {
	// Op is the remote operation that failed (i.e. "list nodes").
	Op  string
	Err error
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("error requesting PuppetDB (%s): %v", e.Op, e.Err)
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Err
}

func (e *RemoteServiceError) StatusCode() int {
	return http.StatusBadGateway
}

// EmptyNodesError is returned when PuppetDB reports no active nodes.
type EmptyNodesError struct{}

func (EmptyNodesError) Error() string {
	return "received zero nodes from PuppetDB"
}

func (EmptyNodesError) StatusCode() int {
	return http.StatusServiceUnavailable
}

// EmptyFactsError is returned when PuppetDB reports no facts for the fact query.
type EmptyFactsError struct{}

func (EmptyFactsError) Error() string {
	return "received zero facts from PuppetDB"
}

func (EmptyFactsError) StatusCode() int {
	return http.StatusServiceUnavailable
}

// QueryBuildError wraps a failure constructing the fact query.
type QueryBuildError struct {
	Err error
}

func (e *QueryBuildError) Error() string {
	return fmt.Sprintf("failed building fact query: %v", e.Err)
}

func (e *QueryBuildError) Unwrap() error {
	return e.Err
}

func (e *QueryBuildError) StatusCode() int {
	return http.StatusInternalServerError
}
