package ir

// reservedNames are workflow names that would collide with the reference
// runner's own subcommands once a workflow is saved and exposed as a
// named CLI command (see cmd/loom). pkg/ir does not reject these itself —
// the save service does, at save time — it only publishes the list.
var reservedNames = []string{
	"run",
	"validate",
	"trace",
	"discover",
	"list",
	"help",
	"version",
}

// ReservedNames returns the workflow names the external save service must
// reject, so it doesn't have to duplicate the list.
func ReservedNames() []string {
	out := make([]string, len(reservedNames))
	copy(out, reservedNames)
	return out
}
