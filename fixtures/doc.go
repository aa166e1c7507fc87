// Package fixtures provides event builders and error-injecting store spies
// shared by the eventlog test suites.
package fixtures
