// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"github.com/xmidt-org/marionette/model"
	"github.com/xmidt-org/marionette/puppetdb"
)

// Convert maps PuppetDB nodes to a NodeSet owned by username. A certname
// seen more than once keeps the last record.
func Convert(nodes []puppetdb.Node, username string) *model.NodeSet {
	s := model.NewNodeSet()
	for _, n := range nodes {
		s.Add(model.Node{
			Name:       n.Certname,
			Hostname:   n.Certname,
			Username:   username,
			Attributes: map[string]string{},
		})
	}
	return s
}
