package command

import "fmt"

// VersionCommand prints the version.
type VersionCommand struct {
	Meta
}

func (c *VersionCommand) Run(args []string) int {
	c.Ui.Output(fmt.Sprintf("adjoint %s", c.Version))
	return 0
}

func (c *VersionCommand) Help() string {
	return "Usage: adjoint version\n\n  Prints the version of adjoint."
}

func (c *VersionCommand) Synopsis() string {
	return "Show the version"
}
