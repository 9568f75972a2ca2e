package testconfig

import (
	"os"
	"testing"
)

var (
	//set WEFT_PARALLEL_TESTS=1 to run the tests of a package in parallel.
	PARALLELIZE_SAME_PKG_TESTS = os.Getenv("WEFT_PARALLEL_TESTS") == "1"
)

func AllowParallelization(t *testing.T) {
	if PARALLELIZE_SAME_PKG_TESTS {
		t.Parallel()
	}
}
