// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"encoding/json"

	"github.com/spf13/cast"
	"github.com/xmidt-org/marionette/model"
	"github.com/xmidt-org/marionette/puppetdb"
)

// Enrich merges facts onto the nodes of base as attributes and returns base.
// Facts for nodes that are not in base are dropped; the number dropped is
// returned alongside the set.
//
// Enrich does not check that every node received the mandatory facts. A node
// whose facts were never reported simply lacks those attributes.
func Enrich(base *model.NodeSet, facts []puppetdb.Fact) (*model.NodeSet, int) {
	byNode := make(map[string][]puppetdb.Fact)
	for _, f := range facts {
		byNode[f.Certname] = append(byNode[f.Certname], f)
	}

	dropped := 0
	for certname, nodeFacts := range byNode {
		if !base.Has(certname) {
			dropped += len(nodeFacts)
			continue
		}
		for _, f := range nodeFacts {
			base.SetAttribute(certname, f.Name, factValue(f.Value))
		}
	}
	return base, dropped
}

// factValue renders a fact value as an attribute string. Structured facts
// are kept as compact JSON.
func factValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case json.Number:
		return x.String()
	case map[string]interface{}, []interface{}:
		return marshalValue(x)
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return marshalValue(v)
	}
	return s
}

func marshalValue(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
