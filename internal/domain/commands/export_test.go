package commands

// WithBranchName replaces the scratch branch generator for testing.
func (it *ReleaseCommand) WithBranchName(name string) *ReleaseCommand {
	it.newBranchName = func() string { return name }
	return it
}
