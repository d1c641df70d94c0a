package main

import "testing"

func TestMainRunsCLI(t *testing.T) {
	ran := 0
	orig := execute
	execute = func() { ran++ }
	t.Cleanup(func() { execute = orig })

	main()

	if ran != 1 {
		t.Fatalf("main ran execute %d times, want 1", ran)
	}
}
