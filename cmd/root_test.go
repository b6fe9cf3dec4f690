package cmd

import "testing"

func TestCommandsRegistered(t *testing.T) {
	want := []string{"chat", "ask", "health", "export", "show", "login", "signup", "reset"}

	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}

	for _, name := range want {
		if !registered[name] {
			t.Errorf("command %q is not registered", name)
		}
	}
}

func TestRootFlags(t *testing.T) {
	if rootCmd.PersistentFlags().Lookup("verbose") == nil {
		t.Errorf("missing --verbose flag")
	}
	if rootCmd.PersistentFlags().Lookup("base-url") == nil {
		t.Errorf("missing --base-url flag")
	}
}
