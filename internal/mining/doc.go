// Package mining extracts recurring patterns from session digests.
//
// Three independent families are mined from a digest batch: tool-call
// sequences (n-grams over assistant tool labels), prompt templates
// (normalized user lines plus Korean suffix/prefix forms), and
// behavioral regularities (language, session length, tool preferences,
// negative reactions). The families are disjoint and unioned without
// de-duplication, since one habit may legitimately surface in more
// than one family.
package mining
