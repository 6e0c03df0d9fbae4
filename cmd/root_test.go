package cmd

import (
	"strings"
	"testing"
)

func TestRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	root := NewRootCommand()

	for _, name := range []string{"serve", "migrate"} {
		sub, _, err := root.Find([]string{name})
		if err != nil || sub.Name() != name {
			t.Fatalf("expected %s subcommand, got %v (err=%v)", name, sub, err)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Fatalf("expected persistent --config flag")
	}
	if root.RunE == nil {
		t.Fatalf("expected root to default to serve")
	}
}

func TestMigrate_RejectsMemoryStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CONFIG_FILE", "")

	root := NewRootCommand()
	root.SetArgs([]string{"migrate"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "migrate requires") {
		t.Fatalf("expected store driver error, got %v", err)
	}
}

func TestServe_InvalidConfig(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("CONFIG_FILE", "")

	root := NewRootCommand()
	root.SetArgs([]string{"serve"})

	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "STORE_DRIVER") {
		t.Fatalf("expected config validation error, got %v", err)
	}
}
