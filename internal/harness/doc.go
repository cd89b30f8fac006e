// Package harness runs declarative conformance scenarios against the
// constraint engine. A scenario names a constraint definition and a
// sequence of records with expected verdicts; the runner evaluates them
// under a fake clock so windowed aggregation and temporal operators
// behave identically on every run, and golden files pin the resulting
// verdict traces.
package harness
