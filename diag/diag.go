// Package diag implements the CA compiler's diagnostic policy: most
// compile errors are hard-fatal (print the source location and message,
// then exit), but a handful of diagnoses — trait-ambiguity candidate
// lists chief among them — need to accumulate several notes before the
// final fatal message is printed.
//
// The shape is grailbio/gql's Panicf/Logf/Debugf (gql/panic.go,
// gql/log.go), generalized from "panic, to be recovered by a caller that
// wants to keep evaluating" to "print and exit": requires a
// genuine compiler failure to stop the process, not propagate as a Go
// error value that some caller might swallow.
package diag

import (
	"fmt"
	"os"

	"github.com/grailbio/base/log"

	"github.com/ca-lang/cac/ast"
)

// Located is anything diag can attach a source location to: any ast.Node,
// or Unknown for a diagnostic with no specific source position.
type Located = ast.Node

// Unknown is passed in place of a Located when a diagnostic has no
// specific source position (e.g. a command-line argument error).
var Unknown Located = ast.NewEmpty(ast.Pos{})

func locate(n Located) string {
	if n == nil {
		n = Unknown
	}
	return n.Begin().String()
}

// Debugf logs a debug-level trace tied to a source location, mirroring
// gql.Debugf.
func Debugf(n Located, format string, args ...interface{}) {
	if log.At(log.Debug) {
		log.Output(2, log.Debug, locate(n)+": "+fmt.Sprintf(format, args...)) //nolint:errcheck
	}
}

// Notef records a non-fatal note tied to a source location: used to
// accumulate the candidate list of a trait-method ambiguity before the
// final Fatalf reports it.
func Notef(n Located, format string, args ...interface{}) {
	log.Output(2, log.Info, locate(n)+": note: "+fmt.Sprintf(format, args...)) //nolint:errcheck
}

// Errorf logs an error-level diagnostic without exiting, for cases the
// caller intends to recover from or escalate itself.
func Errorf(n Located, format string, args ...interface{}) {
	log.Output(2, log.Error, locate(n)+": "+fmt.Sprintf(format, args...)) //nolint:errcheck
}

// Fatalf is caerror: print the location-tagged message to stderr via the
// logger and terminate the process with a non-zero exit status. Every
// compile-time error that cannot be locally recovered from funnels through
// here: a detected semantic error always halts compilation.
func Fatalf(n Located, format string, args ...interface{}) {
	log.Output(2, log.Error, locate(n)+": error: "+fmt.Sprintf(format, args...)) //nolint:errcheck
	os.Exit(1)
}

// Must exits with err's message (via Fatalf, using Unknown as the
// location) if err is non-nil; used at driver boundaries where an error
// has already lost its originating AST node (a lexer/parser error, an I/O
// failure opening the input file).
func Must(err error) {
	if err != nil {
		Fatalf(Unknown, "%v", err)
	}
}
