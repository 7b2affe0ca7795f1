// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package query builds PuppetDB AST query expressions.
//
// Only the subset needed to select facts by name is supported: equality
// predicates on a field and a variadic "or" over predicates. Expressions
// marshal to the JSON array form PuppetDB expects, e.g.
//
//	["or", ["=", "name", "osfamily"], ["=", "name", "kernel"]]
package query

import (
	"encoding/json"
	"errors"
)

var (
	ErrEmptyField  = errors.New("query field is required")
	ErrNoOperands  = errors.New("or requires at least one operand")
	ErrNilOperand  = errors.New("or operand cannot be nil")
	ErrUnsupported = errors.New("unsupported expression")
)

// Field is a queryable field of a PuppetDB entity.
type Field string

// Fields of the facts and nodes endpoints.
const (
	Certname Field = "certname"
	Name     Field = "name"
	Value    Field = "value"
)

// Expression is a PuppetDB query expression.
type Expression interface {
	json.Marshaler

	// String returns the expression in its wire form.
	String() string
}

type equal struct {
	field Field
	value string
}

// Eq builds the predicate field == value.
func Eq(field Field, value string) (Expression, error) {
	if len(field) == 0 {
		return nil, ErrEmptyField
	}
	return equal{field: field, value: value}, nil
}

func (e equal) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string{"=", string(e.field), e.value})
}

func (e equal) String() string {
	return toString(e)
}

type or struct {
	operands []Expression
}

// Or builds the disjunction of the given operands.
func Or(operands ...Expression) (Expression, error) {
	if len(operands) == 0 {
		return nil, ErrNoOperands
	}
	for _, o := range operands {
		if o == nil {
			return nil, ErrNilOperand
		}
	}
	return or{operands: append([]Expression(nil), operands...)}, nil
}

func (o or) MarshalJSON() ([]byte, error) {
	parts := make([]interface{}, 0, len(o.operands)+1)
	parts = append(parts, "or")
	for _, op := range o.operands {
		parts = append(parts, op)
	}
	return json.Marshal(parts)
}

func (o or) String() string {
	return toString(o)
}

// Operands returns the operands of an "or" expression. Their order carries
// no meaning.
func Operands(e Expression) ([]Expression, error) {
	o, ok := e.(or)
	if !ok {
		return nil, ErrUnsupported
	}
	return append([]Expression(nil), o.operands...), nil
}

// Predicate returns the field and value of an equality expression.
func Predicate(e Expression) (Field, string, error) {
	eq, ok := e.(equal)
	if !ok {
		return "", "", ErrUnsupported
	}
	return eq.field, eq.value, nil
}

func toString(m json.Marshaler) string {
	data, err := m.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(data)
}
