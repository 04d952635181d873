// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

// Package query provides SQL query building utilities for the database package.
package query

import (
	"fmt"
	"strings"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
//
// Example usage:
//
//	wb := query.NewWhereBuilder()
//	wb.AddClause("lower(i.status) = lower(?)", "active")
//	wb.AddNotIn("i.id", []int{4, 9})
//	whereClause, args := wb.Build()
//	// lower(i.status) = lower(?) AND i.id NOT IN (?, ?)
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause adds a raw WHERE clause with its arguments.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddClauseIf adds the clause only when cond is true.
func (wb *WhereBuilder) AddClauseIf(cond bool, clause string, args ...interface{}) *WhereBuilder {
	if cond {
		wb.AddClause(clause, args...)
	}
	return wb
}

// AddIn adds "column IN (?, ...)". An empty list matches nothing.
func (wb *WhereBuilder) AddIn(column string, ids []int) *WhereBuilder {
	if len(ids) == 0 {
		wb.clauses = append(wb.clauses, "1=0")
		return wb
	}
	wb.clauses = append(wb.clauses, fmt.Sprintf("%s IN (%s)", column, wb.placeholders(ids)))
	return wb
}

// AddNotIn adds "column NOT IN (?, ...)". An empty list is skipped.
func (wb *WhereBuilder) AddNotIn(column string, ids []int) *WhereBuilder {
	if len(ids) == 0 {
		return wb
	}
	wb.clauses = append(wb.clauses, fmt.Sprintf("%s NOT IN (%s)", column, wb.placeholders(ids)))
	return wb
}

func (wb *WhereBuilder) placeholders(ids []int) string {
	placeholders := make([]string, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		wb.args = append(wb.args, id)
	}
	return strings.Join(placeholders, ", ")
}

// Build returns the WHERE clause (without "WHERE" keyword) and arguments.
// An empty builder yields "1=1".
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns the WHERE clause with "WHERE " prefix.
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}
