package cmd

import (
	"github.com/isopod-iot/sealer/src/publish"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(publishCmd)
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Run the publication scheduler that creates allowlists for staged batches",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := publish.NewController(conf)
		if err != nil {
			return
		}

		err = controller.Start()
		if err != nil {
			return
		}

		<-ctx.Done()

		controller.StopWait()
		return
	},
}
