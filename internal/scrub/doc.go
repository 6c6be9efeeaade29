// Package scrub redacts secrets from session digests before they are
// mined or written to reports. Detection uses the gitleaks ruleset;
// matches are replaced with [REDACTED:rule-id] markers that keep the
// line readable without the secret.
package scrub
