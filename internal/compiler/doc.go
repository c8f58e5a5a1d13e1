// Package compiler assembles loaded specifications into one resolved
// document: structural validation, glossary and reference bubble-up,
// multi-document combination with a deterministic merge order, dependency
// resolution and bibliography assembly.
package compiler
