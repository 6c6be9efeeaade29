// Package classify maps mined patterns to actionable suggestions.
//
// Classification is a total function over patterns: every pattern
// yields exactly one suggestion with a kind, a generated name, a
// priority tier, and a rationale quoting literal evidence from the
// pattern's examples.
package classify
