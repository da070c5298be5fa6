// Package ir holds the in-memory IR module: globals, functions, basic blocks,
// instructions and the values flowing between them.
//
// A Module owns its own type interner, so two modules never share types,
// constants or values. Instructions are appended by internal/emit; this
// package only stores them and verifies them (validate.go). Rendering lives in
// internal/backend.
package ir
