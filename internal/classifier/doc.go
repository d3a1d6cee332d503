// Package classifier scores Indonesian news text as hoax or non-hoax.
//
// The rule engine combines keyword, pattern, source, capitalization, and
// punctuation factors into a weighted probability. An optional external ML
// scorer can be routed in front of it; the rule engine is the deterministic
// backstop when the scorer is disabled or failing.
package classifier
