// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"github.com/xmidt-org/marionette/puppetdb/query"
	"k8s.io/apimachinery/pkg/util/sets"
)

// MandatoryFactNames returns the facts requested for every node regardless
// of configuration.
func MandatoryFactNames() sets.Set[string] {
	return sets.New("hardwaremodel", "operatingsystem", "operatingsystemrelease", "osfamily")
}

// BuildFactQuery returns an "or" of name equalities covering the mandatory
// facts and any custom ones. custom may be nil. The operand order is not
// significant.
func BuildFactQuery(custom sets.Set[string]) (query.Expression, error) {
	names := MandatoryFactNames().Union(custom)

	operands := make([]query.Expression, 0, names.Len())
	for name := range names {
		e, err := query.Eq(query.Name, name)
		if err != nil {
			return nil, &QueryBuildError{Err: err}
		}
		operands = append(operands, e)
	}

	q, err := query.Or(operands...)
	if err != nil {
		return nil, &QueryBuildError{Err: err}
	}
	return q, nil
}
