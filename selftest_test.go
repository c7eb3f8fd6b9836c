package main

import "testing"

func TestRunSelfTestSucceeds(t *testing.T) {
	if err := runSelfTest(); err != nil {
		t.Fatalf("self test failed: %v", err)
	}
}
