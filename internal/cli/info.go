package cli // import "github.com/jemtv/storyfeed/internal/cli"

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/jemtv/storyfeed/internal/version"
)

var infoCmd = cobra.Command{
	Use:   "info",
	Short: "Show build information",
	Args:  cobra.ExactArgs(0),

	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf(`Version: %s
Commit: %s
Build Date: %s
Go: %s (%s, %s/%s)
`,
			version.Version, version.Commit, version.BuildDate,
			runtime.Version(), runtime.Compiler, runtime.GOOS, runtime.GOARCH)
	},
}
