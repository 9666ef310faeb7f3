package config

import "log"

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

// MustPair fails when exactly one of two variables that only make sense together is set.
func MustPair(a, aName, b, bName string) {
	if (a == "") != (b == "") {
		log.Fatalf("env %s and %s must be set together", aName, bName)
	}
}
