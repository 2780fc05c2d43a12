// Package rules compiles declarative checks into response predicates.
//
// A rule names a path into the response body, an operator and an expected
// value, for example:
//
//	- name: second product named wizzy bang
//	  path: products[1].name
//	  op: equals
//	  value: wizzy bang
//
// Supported operators: equals, not_equals, gt, gte, lt, lte, contains,
// starts_with, ends_with, matches, exists, not_exists, length, type,
// includes and uuid. An empty path targets the whole body.
package rules
