// Package ir provides the in-memory document model for pfsc.
//
// This package contains type definitions and small pure helpers only. All
// other internal packages import ir; ir imports nothing internal. This keeps
// the model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Specification is the loaded (and possibly combined) source tree
//   - Document is the flat, fully resolved tree handed to renderers
//   - Requirement.UID is derived at compile time and never read from source
//   - All JSON tags use snake_case
package ir
