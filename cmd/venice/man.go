package main

import (
	"fmt"

	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

var manCmd = &cobra.Command{
	Use:    "man",
	Short:  "Generate the venice man page.",
	Hidden: true,
	Run: func(cmd *cobra.Command, args []string) {
		manPage, err := mcobra.NewManPage(1, rootCmd)
		if err != nil {
			fail(exitInvalidUsage, "failed to generate man page: %v", err)
		}
		manPage = manPage.WithSection("Copyright", "(c) venice-go contributors")
		fmt.Println(manPage.Build(roff.NewDocument()))
	},
}

func init() {
	rootCmd.AddCommand(manCmd)
}
