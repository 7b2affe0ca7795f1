// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"context"

	"github.com/go-kit/kit/endpoint"
	"github.com/xmidt-org/marionette/model"
)

// NodeGetter provides the current NodeSet.
type NodeGetter interface {
	GetNodes(ctx context.Context) (*model.NodeSet, error)
}

func newGetNodesEndpoint(g NodeGetter) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		nodesRequest := request.(*getNodesRequest)
		nodes, err := g.GetNodes(ctx)
		if err != nil {
			return nil, err
		}
		return &getNodesResponse{
			nodes:  nodes,
			format: nodesRequest.format,
		}, nil
	}
}
