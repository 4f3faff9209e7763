// Command wlproxyd is the Wayland registry-filtering proxy: it dials
// the real compositor, listens on a socket of its own, and hands every
// connecting client a view of the registry shaped by its configured
// Baseline and Mapper rules.
package main

import "github.com/gogpu/wlproxy/cmd"

var (
	Version   string
	BuildTime string
	GitCommit string
)

func main() {
	cmd.Version = Version
	cmd.BuildTime = BuildTime
	cmd.GitCommit = GitCommit

	cmd.Execute()
}
