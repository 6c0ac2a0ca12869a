// Package shared holds utilities used across the energymix codebase that
// do not belong to any one layer.
//
// The testutil subpackage provides slog capture helpers for asserting on
// structured log output in tests. Nothing here may depend on the domain
// packages; shared sits below every other internal package.
package shared
