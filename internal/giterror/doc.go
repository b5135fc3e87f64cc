// Package giterror provides error inspection capabilities for GitHub API errors.
// It centralizes the logic for identifying different types of errors returned by
// the GitHub GraphQL API and decides which failures are worth another attempt.
package giterror
