package dataset_test

import (
	"testing"

	"go.uber.org/goleak"
)

// The store and watcher own goroutines and database handles; make sure every
// test releases them.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
