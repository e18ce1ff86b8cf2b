package diag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ca-lang/cac/diag"
)

func TestLocateUnknownDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		diag.Debugf(diag.Unknown, "trace %d", 1)
		diag.Notef(nil, "candidate %s", "Animal")
		diag.Errorf(diag.Unknown, "non-fatal issue")
	})
}
