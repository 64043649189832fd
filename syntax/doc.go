// Package syntax provides the parser and syntax tree for Marq documents.
//
// This package is responsible for tokenizing and parsing Marq source code
// into an abstract syntax tree (AST) that can be processed by other packages.
package syntax
